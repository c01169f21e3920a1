// Package dsl builds dynamic schemas for goshadow values.
//
// A Schema is a goshadow.Codec[goshadow.Value]: FromValue checks and
// normalizes an annotated tree, recording problems on the offending nodes,
// and IntoValue applies the serialization policy of each field before output.
// Schemas also export themselves as JSON Schema.
//
// Entry points
//   - Object(): object builder; chain Field/Required/Skip/SpanAttribute and
//     Unknown* then Build or MustBuild.
//   - String(), Bool(), I64(), U64(), U32(), F64(), Timestamp(), Any(),
//     Enum(values...): leaf schemas.
//   - Array(elem), Map(elem): containers.
//   - Of(codec, desc): adapt any typed codec.
//   - LoadYAML(data): declarative schemas.
//
// Example
//
//	user := dsl.Object().
//	    Field("name", dsl.String().MaxChars(64)).Required().
//	    Field("age", dsl.U32()).Skip(goshadow.SkipNull).
//	    Field("tags", dsl.Array(dsl.String())).Skip(goshadow.SkipEmpty).
//	    UnknownStrip().
//	    MustBuild()
//
//	doc, _ := goshadow.ParseJSON(data)
//	checked := goshadow.Convert(doc, user)
//	out, _ := goshadow.NewSerializable(checked, user).MarshalJSON()
package dsl
