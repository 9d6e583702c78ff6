// Package pica models line-oriented, subfield-delimited bibliographic
// records and answers locator queries against them.
//
// Each non-blank line of a record is one field:
//
//	Line       ::= Tag ['/' Occurrence] [Whitespace] Subfield*
//	Tag        ::= Digit Digit Digit (UpperLetter | '@')
//	Occurrence ::= Digit Digit
//	Subfield   ::= '$' Code Value
//	Code       ::= Letter | Digit
//	Value      ::= (any char, '$' written as '$$')*
//
// Parsing is tolerant at line level: a malformed line degrades to an
// invalid sentinel field instead of failing the record parse.
//
// Queries address fields and values through the locator language of the
// locator package, with candidate values optionally rewritten or dropped by
// filter steps before cardinality contracts are checked.
//
// Fields and records are mutated only while being built; afterwards they
// are read-only and may be queried concurrently without locking, provided
// construction was confined to a single goroutine.
package pica
