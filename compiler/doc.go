/*

Process of compilation

Source Text ->
	tokenize ->
Token Forest ->
	parse declarations ->
Script and Global Declarations ->
	resolve and type check ->
Typed Expression Trees ->
	flatten ->
Indexed Node Array (ir.Data) ->
	serialize (external) ->
Scenario Tag Data

*/
package compiler
