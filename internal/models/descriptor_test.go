package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrimitive(t *testing.T) {
	tests := []struct {
		name string
		want Primitive
		ok   bool
	}{
		{"string", PrimitiveString, true},
		{"int64", PrimitiveInt64, true},
		{"byte", PrimitiveUint8, true},
		{"rune", PrimitiveInt32, true},
		{"float32", PrimitiveFloat32, true},
		{"[]byte", PrimitiveNone, false},
		{"complex128", PrimitiveNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePrimitive(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTypeDescriptorString(t *testing.T) {
	tests := []struct {
		desc *TypeDescriptor
		want string
	}{
		{NewPrimitive(PrimitiveString), "string"},
		{NewCollection(NewPrimitive(PrimitiveString), ContainerBuiltin), "[]string"},
		{NewCollection(NewPrimitive(PrimitiveInt32), ContainerRuntime), "remoter.List[int32]"},
		{NewMap(NewPrimitive(PrimitiveString), NewCollection(NewPrimitive(PrimitiveBool), ContainerBuiltin), ContainerBuiltin), "map[string][]bool"},
		{&TypeDescriptor{Kind: KindArray, Length: 4, Elem: NewPrimitive(PrimitiveUint8)}, "[4]uint8"},
		{&TypeDescriptor{Kind: KindRecord, Name: "Point", Nullable: true}, "*Point"},
		{&TypeDescriptor{Unsupported: "chan int"}, "chan int"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.desc.String())
		})
	}
}

func TestWithMutablePropagatesToNestedContainers(t *testing.T) {
	inner := NewCollection(NewPrimitive(PrimitiveString), ContainerRuntime)
	record := &TypeDescriptor{Kind: KindRecord, Name: "Point", Fields: []Field{
		{Name: "Tags", Type: NewCollection(NewPrimitive(PrimitiveString), ContainerBuiltin)},
	}}
	outer := NewMap(NewPrimitive(PrimitiveString), NewCollection(inner, ContainerBuiltin), ContainerBuiltin)
	withRecord := NewCollection(record, ContainerBuiltin)

	got := outer.WithMutable(true)
	assert.True(t, got.Mutable)
	assert.True(t, got.Elem.Mutable)
	assert.True(t, got.Elem.Elem.Mutable)
	assert.False(t, got.Key.Mutable, "primitives never carry the flag")
	assert.False(t, outer.Mutable, "original descriptor is untouched")

	gotRecord := withRecord.WithMutable(true)
	assert.True(t, gotRecord.Mutable)
	assert.False(t, gotRecord.Elem.Fields[0].Type.Mutable, "record fields keep their own metadata")
}

func TestFingerprint(t *testing.T) {
	a := NewCollection(NewPrimitive(PrimitiveString), ContainerBuiltin)
	b := NewCollection(NewPrimitive(PrimitiveString), ContainerBuiltin)
	require.Equal(t, a.Fingerprint(), b.Fingerprint())

	assert.NotEqual(t, a.Fingerprint(), a.WithMutable(true).Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), NewCollection(NewPrimitive(PrimitiveString), ContainerRuntime).Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), NewCollection(NewPrimitive(PrimitiveInt), ContainerBuiltin).Fingerprint())
}

func TestParseDirection(t *testing.T) {
	for input, want := range map[string]Direction{"": DirectionIn, "in": DirectionIn, "OUT": DirectionOut, "inout": DirectionInOut} {
		got, err := ParseDirection(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseDirection("sideways")
	assert.Error(t, err)
}

func TestPackageMetadataRemote(t *testing.T) {
	pkg := &PackageMetadata{Interfaces: []*RawInterface{
		{Name: "Greeter"},
		{Name: "Listener", Callback: true},
	}}

	remote := pkg.Remote()
	require.Len(t, remote, 1)
	assert.Equal(t, "Greeter", remote[0].Name)

	found, ok := pkg.Lookup("Listener")
	require.True(t, ok)
	assert.True(t, found.Callback)
}
