package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/remoter/internal/errors"
	"github.com/toyz/remoter/internal/models"
)

const greeterSource = `package greeter

import (
	"context"
	"errors"
	"fmt"
	"time"

	rt "github.com/toyz/remoter/pkg/remoter"
)

var (
	ErrNotFound = errors.New("not found")
	ErrDenied   = fmt.Errorf("denied")
	errInternal error
	Version     = "1"
)

type Mood int

const (
	Happy Mood = iota
	Sad
)

type Level int

type Point struct {
	X, Y   int32
	Label  *string
	hidden bool
}

type Node struct {
	Value    string
	Children []Node
}

type Alias = Point

// Listener gets notified.
//remoter::callback
type Listener interface {
	OnGreeting(text string) error
}

// Greeter says hello.
//
//remoter::remote -Descriptor=com.example.Greeter
type Greeter interface {
	//remoter::param names -Mutable
	//remoter::returns -Mutable
	Echo(ctx context.Context, names rt.List[string]) (rt.List[string], error)

	//remoter::oneway
	Notify(text string) error

	//remoter::throws -Errors=ErrNotFound,ErrDenied
	Find(m Mood, tags map[string][]Point) (*Point, error)

	//remoter::param l -Direction=inout
	Subscribe(l Listener, at [4]byte, blob []byte, _ Alias) error

	Walk(n Node, counts rt.Map[string, int64]) error

	Bad(when time.Time, ch chan int, lvl Level, any interface{}) (int, string, error)
}

type Plain interface {
	Ignored()
}
`

func parseGreeter(t *testing.T) *models.PackageMetadata {
	t.Helper()
	p := NewParser()
	p.SetModuleName("example.com/greeter")
	metadata, err := p.ParseSource("greeter.go", greeterSource)
	require.NoError(t, err)
	return metadata
}

func method(t *testing.T, iface *models.RawInterface, name string) models.RawMethod {
	t.Helper()
	for _, m := range iface.Methods {
		if m.Name == name {
			return m
		}
	}
	t.Fatalf("method %s not found", name)
	return models.RawMethod{}
}

func TestParseSource_Interfaces(t *testing.T) {
	metadata := parseGreeter(t)

	assert.Equal(t, "greeter", metadata.PackageName)
	assert.Equal(t, []string{"ErrDenied", "ErrNotFound", "errInternal"}, metadata.Errors)
	require.Len(t, metadata.Interfaces, 2, "unannotated interfaces are skipped")

	listener := metadata.Interfaces[0]
	assert.Equal(t, "Listener", listener.Name)
	assert.True(t, listener.Callback)
	assert.Equal(t, "example.com/greeter.Listener", listener.Descriptor)

	greeter := metadata.Interfaces[1]
	assert.Equal(t, "Greeter", greeter.Name)
	assert.False(t, greeter.Callback)
	assert.Equal(t, "com.example.Greeter", greeter.Descriptor)
	assert.Equal(t, "example.com/greeter", greeter.ImportPath)
	assert.True(t, greeter.KnownErrors["ErrNotFound"])
	assert.Len(t, greeter.Methods, 6)
	assert.Equal(t, 50, greeter.Location.Line)
}

func TestParseSource_Methods(t *testing.T) {
	greeter := parseGreeter(t).Interfaces[1]

	t.Run("context and runtime containers", func(t *testing.T) {
		m := method(t, greeter, "Echo")
		assert.True(t, m.HasContext)
		assert.True(t, m.ReturnsErr)
		require.Len(t, m.Params, 1)
		assert.Equal(t, "names", m.Params[0].Name)
		assert.Equal(t, "remoter.List[string]", m.Params[0].Type.String())
		assert.True(t, m.Params[0].Type.Mutable)
		require.Len(t, m.Results, 1)
		assert.True(t, m.Results[0].Mutable)
		assert.Equal(t, "(rt.List[string])", m.Signature)
	})

	t.Run("oneway", func(t *testing.T) {
		m := method(t, greeter, "Notify")
		assert.True(t, m.OneWay)
		assert.Empty(t, m.Results)
	})

	t.Run("records enums and failures", func(t *testing.T) {
		m := method(t, greeter, "Find")
		assert.Equal(t, []string{"ErrNotFound", "ErrDenied"}, m.Failures)

		mood := m.Params[0].Type
		assert.Equal(t, models.KindEnum, mood.Kind)
		assert.Equal(t, models.PrimitiveInt, mood.Primitive)

		tags := m.Params[1].Type
		assert.Equal(t, "map[string][]Point", tags.String())
		point := tags.Elem.Elem
		require.Equal(t, models.KindRecord, point.Kind)
		require.Len(t, point.Fields, 3, "unexported fields are skipped")
		assert.Equal(t, "X", point.Fields[0].Name)
		assert.Equal(t, "Y", point.Fields[1].Name)
		assert.True(t, point.Fields[2].Type.Nullable)

		require.Len(t, m.Results, 1)
		assert.Equal(t, "*Point", m.Results[0].String())
	})

	t.Run("callbacks arrays bytes and aliases", func(t *testing.T) {
		m := method(t, greeter, "Subscribe")
		require.Len(t, m.Params, 4)
		assert.Equal(t, models.KindCallback, m.Params[0].Type.Kind)
		assert.Equal(t, models.DirectionInOut, m.Params[0].Type.Direction)
		assert.Equal(t, "[4]uint8", m.Params[1].Type.String())
		assert.Equal(t, models.PrimitiveBytes, m.Params[2].Type.Primitive)
		assert.Equal(t, "arg3", m.Params[3].Name)
		assert.Equal(t, "Point", m.Params[3].Type.Name)
	})

	t.Run("recursive record", func(t *testing.T) {
		m := method(t, greeter, "Walk")
		node := m.Params[0].Type
		require.Len(t, node.Fields, 2)
		child := node.Fields[1].Type.Elem
		assert.True(t, child.BackRef)
		assert.Empty(t, child.Fields)

		counts := m.Params[1].Type
		assert.Equal(t, models.KindMap, counts.Kind)
		assert.Equal(t, models.ContainerRuntime, counts.Container)
	})

	t.Run("unsupported types are described not rejected", func(t *testing.T) {
		m := method(t, greeter, "Bad")
		require.Len(t, m.Params, 4)
		assert.Equal(t, "time.Time", m.Params[0].Type.Unsupported)
		assert.Equal(t, "chan int", m.Params[1].Type.Unsupported)
		assert.Equal(t, "Level", m.Params[2].Type.Unsupported, "named integer without constants")
		assert.Equal(t, "interface{}", m.Params[3].Type.Unsupported)
		assert.Len(t, m.Results, 2)
	})
}

func TestParseSource_AnnotationProblems(t *testing.T) {
	src := `package demo

//remoter::remote
type Svc interface {
	//remoter::param missing
	//remoter::returns -Mutable
	Do(a int) error
}
`
	metadata, err := NewParser().ParseSource("demo.go", src)
	require.NoError(t, err)
	m := metadata.Interfaces[0].Methods[0]
	assert.Equal(t, []string{
		"annotation names unknown parameter 'missing'",
		"//remoter::returns on a method without a value result",
	}, m.Problems)
}

func TestParseSource_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{
			name: "embedded interface",
			src: `package demo
type Base interface{ Ping() error }
//remoter::remote
type Svc interface {
	Base
}
`,
			wantMsg: "embedded interfaces are not supported",
		},
		{
			name: "method annotation on interface",
			src: `package demo
//remoter::oneway
type Svc interface {
	Ping() error
}
`,
			wantMsg: "not allowed on interface",
		},
		{
			name: "two interface annotations",
			src: `package demo
//remoter::remote
//remoter::callback
type Svc interface {
	Ping() error
}
`,
			wantMsg: "more than one remoter annotation",
		},
		{
			name: "bad annotation parameter",
			src: `package demo
//remoter::remote
type Svc interface {
	//remoter::throws
	Ping() error
	//remoter::param x -Direction=up
	Pong(x int) error
}
`,
			wantMsg: "Direction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().ParseSource("demo.go", tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)

			var multi *errors.MultipleErrors
			require.ErrorAs(t, err, &multi)
			assert.NotEmpty(t, multi.Errors[0].Location().File)
		})
	}
}

func TestParseDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/app\n\ngo 1.25\n"), 0o644))

	dir := filepath.Join(root, "api")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "svc.go"), []byte(`package api

//remoter::remote
type Svc interface {
	Ping(msg string) (string, error)
}
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "types.go"), []byte(`package api

import "errors"

var ErrGone = errors.New("gone")
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "autogen_svc_proxy.go"), []byte("package api\n\nthis is not go\n"), 0o644))

	t.Run("resolves import path from go.mod", func(t *testing.T) {
		metadata, err := NewParser().ParseDirectory(dir)
		require.NoError(t, err)
		assert.Equal(t, "example.com/app/api", metadata.ImportPath)
		assert.Equal(t, []string{"ErrGone"}, metadata.Errors)
		require.Len(t, metadata.Interfaces, 1)
		assert.Equal(t, "example.com/app/api.Svc", metadata.Interfaces[0].Descriptor)
	})

	t.Run("descriptor prefix", func(t *testing.T) {
		p := NewParser()
		p.SetDescriptorPrefix("com.example")
		metadata, err := p.ParseDirectory(dir)
		require.NoError(t, err)
		assert.Equal(t, "com.example.Svc", metadata.Interfaces[0].Descriptor)
	})

	t.Run("module override", func(t *testing.T) {
		p := NewParser()
		p.SetModuleName("override.io/x")
		metadata, err := p.ParseDirectory(dir)
		require.NoError(t, err)
		assert.Equal(t, "override.io/x/api", metadata.ImportPath)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := NewParser().ParseDirectory(filepath.Join(root, "nope"))
		assert.Error(t, err)
	})
}
