// Package migration upgrades media records written by the legacy schema,
// which had no "type" discriminator, to the current one.
//
// Decoding is a two-step boundary: ParseArray splits the document and
// DecodeAll validates each element into a model.RawRecord. Normalize then
// fills in the kind for every untyped element from its file extension, so
// only fully typed records ever reach the catalog.
package migration
