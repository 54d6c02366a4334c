// Package asm compiles the textual instruction language into vm
// bytecode: a channel-based lexer feeds a parser that builds an
// in-order statement list, which a two-pass compiler turns into bytes.
// The architecture mirrors the teacher's core/asm package (Lex/Feed/
// Compile), rebuilt here for minichain's own mnemonics and operand
// shapes.
package asm

import "fmt"

type tokenType int

const (
	tokError tokenType = iota
	tokEOF
	tokMnemonic
	tokRegister
	tokNumber
	tokIdent
	tokDirective
	tokComma
	tokColon
)

func (t tokenType) String() string {
	switch t {
	case tokError:
		return "error"
	case tokEOF:
		return "EOF"
	case tokMnemonic:
		return "mnemonic"
	case tokRegister:
		return "register"
	case tokNumber:
		return "number"
	case tokIdent:
		return "identifier"
	case tokDirective:
		return "directive"
	case tokComma:
		return "','"
	case tokColon:
		return "':'"
	default:
		return "unknown"
	}
}

// token is one lexical unit with its source line, used by both the
// parser and the compiler's error messages.
type token struct {
	typ  tokenType
	text string
	line int
}

func (t token) String() string {
	return fmt.Sprintf("%s(%q)@%d", t.typ, t.text, t.line)
}
