// tokenlens CLI entry point
//
// tokenlens (tl) counts and prices the tokens of a text on popular LLMs,
// compares models and breaks the text down by character.
package main

import "github.com/jbctechsolutions/tokenlens/internal/presentation/cli/commands"

func main() {
	commands.Execute()
}
