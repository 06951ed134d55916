// Package remoter is the runtime used by generated proxies and stubs.
//
// A proxy encodes a call with a Writer, hands the payload to a Transport
// under the method's dispatch index and decodes the response with a Reader.
// On the other side a Dispatcher, built by the generated stub constructor,
// decodes the arguments, invokes the implementation and encodes the result.
//
// Loopback connects both sides in memory and doubles as the CallbackBroker
// through which callback interfaces travel as tokens. It tracks callback
// identity: passing the same listener twice reuses its token, and a handler
// that is done with a callback drops the token with ReleaseCallback.
package remoter
