// Package goshadow provides:
//
// - A dynamic Value for semi-structured JSON and YAML input, with insertion-ordered objects
// - Annotated[T]: a value that may be absent, paired with Meta (errors, remarks, original length and value)
// - Conversion between Value and typed data that records errors on the offending node instead of failing
// - A processing walker whose visitors delete, replace, mask and truncate values, leaving remarks behind
// - A sparse MetaTree and a wire format that carries it next to the clean payload under "_meta"
//
// Design policy:
// - Keep only public APIs in the root package; put tokenizing and limit enforcement under internal/.
// - Place codecs under codec/, the dynamic schema DSL under dsl/, scrubbing rules under rules/ and the CLI under cmd/goshadow.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	doc, err := goshadow.ParseJSON(data)
//	user := goshadow.Convert(doc, goshadow.StructCodec[User]())
//	err = goshadow.Process(&doc, goshadow.VisitorFunc(func(node *goshadow.Annotated[goshadow.Value], st *goshadow.State) goshadow.ProcessingResult {
//		...
//	}))
//
//	wire, err := goshadow.Serializable(doc).MarshalJSON()
//	payload, meta, err := goshadow.Serializable(doc).Split()
//	back, err := goshadow.ParseWithMeta(wire)
//
// Errors are data: only malformed syntax, exceeded limits and visitor aborts
// return Go errors. Everything else ends up in Meta, and
// ExtractMeta(doc).Issues() lists it with JSON Pointers.
package goshadow
