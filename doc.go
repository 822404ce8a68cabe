// Package biblatex parses Bib(La)TeX source text into raw, unresolved
// records: citation key, entry type, and a field-name to raw-value mapping
// per entry, plus a file-level macro table and a verbatim preamble. Values
// keep their source bytes exactly as written, escapes and delimiters
// included; expanding macros, unescaping and rendering belong to later
// stages and never happen here.
//
// Grammar (informal BNF):
//
//	Database ::= (Junk '@' Block)*
//	Block    ::= 'string'   '{' Property* '}'      -- with Options.AllowBibtex
//	          |  'preamble' '{' '"' Verbatim '"' '}'
//	          |  Type '{' Key ',' Property* '}'
//	Type     ::= Ident
//	Key      ::= Ident
//	Property ::= Ident '=' Value (',' | '}')
//	Value    ::= text with balanced '{' '}' and '"' '"' runs
//	Ident    ::= characters outside the reserved set @{}"#'(),=%\~
//
// A '%' starts a line comment anywhere between tokens. A backslash keeps
// the following '{', '}' or '"' from acting as a delimiter. Malformed
// blocks are skipped, reported as diagnostics, and parsing continues with
// the rest of the buffer.
package biblatex
