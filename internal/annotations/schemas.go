package annotations

// Built-in annotation schemas

// RemoteAnnotationSchema defines the schema for //remoter::remote
var RemoteAnnotationSchema = AnnotationSchema{
	Type:        RemoteAnnotation,
	Description: "Marks an interface for proxy and stub generation",
	Placement:   OnInterface,
	Parameters: map[string]ParameterSpec{
		"Name": {
			Type:        StringType,
			Description: "Prefix for generated type names, defaults to the interface name",
			Validator:   ValidateIdentifier("Name"),
		},
		"Descriptor": {
			Type:        StringType,
			Description: "Wire descriptor, defaults to <import path>.<interface>",
			Validator:   ValidateDescriptor,
		},
	},
	Examples: []string{
		"//remoter::remote",
		"//remoter::remote -Descriptor=com.example.Greeter",
		"//remoter::remote -Name=RemoteGreeter",
	},
}

// CallbackAnnotationSchema defines the schema for //remoter::callback
var CallbackAnnotationSchema = AnnotationSchema{
	Type:        CallbackAnnotation,
	Description: "Marks an interface that may be passed across the boundary as a callback",
	Placement:   OnInterface,
	Parameters: map[string]ParameterSpec{
		"Descriptor": {
			Type:        StringType,
			Description: "Wire descriptor, defaults to <import path>.<interface>",
			Validator:   ValidateDescriptor,
		},
	},
	Examples: []string{"//remoter::callback"},
}

// OneWayAnnotationSchema defines the schema for //remoter::oneway
var OneWayAnnotationSchema = AnnotationSchema{
	Type:        OneWayAnnotation,
	Description: "Marks a fire-and-forget method; the proxy does not wait for a response",
	Placement:   OnMethod,
	Parameters:  map[string]ParameterSpec{},
	Examples:    []string{"//remoter::oneway"},
}

// ThrowsAnnotationSchema defines the schema for //remoter::throws
var ThrowsAnnotationSchema = AnnotationSchema{
	Type:        ThrowsAnnotation,
	Description: "Declares the failure kinds a method may report to its caller",
	Placement:   OnMethod,
	Parameters: map[string]ParameterSpec{
		"Errors": {
			Type:        StringSliceType,
			Required:    true,
			Description: "Comma-separated package-level error variables",
			Validator:   ValidateErrorNames,
		},
	},
	Validators: []CustomValidator{uniqueErrors},
	Examples: []string{
		"//remoter::throws -Errors=ErrNotFound",
		"//remoter::throws -Errors=ErrNotFound,ErrDenied",
	},
}

// ParamAnnotationSchema defines the schema for //remoter::param
var ParamAnnotationSchema = AnnotationSchema{
	Type:        ParamAnnotation,
	Description: "Attaches marshalling metadata to one method parameter",
	Placement:   OnMethod,
	Positional:  []string{"name"},
	Parameters: map[string]ParameterSpec{
		"name": {
			Type:        StringType,
			Required:    true,
			Description: "Parameter name",
			Validator:   ValidateIdentifier("name"),
		},
		"Mutable": {
			Type:         BoolType,
			DefaultValue: false,
			Description:  "Decode into growable containers",
		},
		"Direction": {
			Type:         StringType,
			DefaultValue: "in",
			Description:  "in, out or inout; only callback parameters may be out or inout",
			Validator:    ValidateDirection,
		},
	},
	Examples: []string{
		"//remoter::param names -Mutable",
		"//remoter::param listener -Direction=inout",
	},
}

// ReturnsAnnotationSchema defines the schema for //remoter::returns
var ReturnsAnnotationSchema = AnnotationSchema{
	Type:        ReturnsAnnotation,
	Description: "Attaches marshalling metadata to the method result",
	Placement:   OnMethod,
	Parameters: map[string]ParameterSpec{
		"Mutable": {
			Type:         BoolType,
			DefaultValue: false,
			Description:  "Decode into growable containers",
		},
	},
	Examples: []string{"//remoter::returns -Mutable"},
}

// BuiltinSchemas lists every schema registered by RegisterBuiltinSchemas
var BuiltinSchemas = []AnnotationSchema{
	RemoteAnnotationSchema,
	CallbackAnnotationSchema,
	OneWayAnnotationSchema,
	ThrowsAnnotationSchema,
	ParamAnnotationSchema,
	ReturnsAnnotationSchema,
}

// RegisterBuiltinSchemas registers all built-in schemas
func RegisterBuiltinSchemas(registry AnnotationRegistry) error {
	for _, schema := range BuiltinSchemas {
		if err := registry.Register(schema.Type, schema); err != nil {
			return err
		}
	}
	return nil
}
