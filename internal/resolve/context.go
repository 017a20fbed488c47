// Package resolve computes the Rust types that grammar rules, alternatives
// and symbols evaluate to.
package resolve

import (
	"fmt"

	"github.com/orizon-lang/lalrpop-ide/internal/grammar"
)

// UnitType is the placeholder for anything without a computable type.
const UnitType = "()"

// Default ambient types used when no extern block overrides them.
const (
	DefaultLocationType = "usize"
	DefaultErrorType    = UnitType
	DefaultTokenType    = "&str"
)

// Context holds the ambient types of one grammar file.
type Context struct {
	LocationType string
	ErrorType    string
	TokenType    string
}

// DefaultContext returns the context of a file without extern block.
func DefaultContext() Context {
	return Context{
		LocationType: DefaultLocationType,
		ErrorType:    DefaultErrorType,
		TokenType:    DefaultTokenType,
	}
}

// ParseError is the error type a fallible action returns.
func (c Context) ParseError() string {
	return fmt.Sprintf("::lalrpop_util::ParseError<%s, %s, %s>", c.LocationType, c.TokenType, c.ErrorType)
}

// ErrorRecovery is the type of the `!` symbol.
func (c Context) ErrorRecovery() string {
	return fmt.Sprintf("::lalrpop_util::ErrorRecovery<%s, %s, %s>", c.LocationType, c.TokenType, c.ErrorType)
}

// ContextFor reads the ambient types of file, falling back to
// DefaultContext for anything not declared.
func ContextFor(file *grammar.File) Context {
	return ContextWithDefaults(file, DefaultContext())
}

// ContextWithDefaults is ContextFor with caller supplied fallbacks. The
// first declaration of each type wins.
func ContextWithDefaults(file *grammar.File, defaults Context) Context {
	ctx := defaults
	var location, errorType, token string
	r := NewResolver(file, defaults)
	for _, ext := range file.Externs {
		for _, assoc := range ext.AssociatedTypes {
			switch assoc.Name {
			case "Location":
				if location == "" {
					location = r.ResolveTypeRef(assoc.Type, MacroArguments{})
				}
			case "Error":
				if errorType == "" {
					errorType = r.ResolveTypeRef(assoc.Type, MacroArguments{})
				}
			}
		}
		if ext.Enum != nil && token == "" {
			token = r.ResolveTypeRef(ext.Enum.Type, MacroArguments{})
		}
	}
	if location != "" {
		ctx.LocationType = location
	}
	if errorType != "" {
		ctx.ErrorType = errorType
	}
	if token != "" {
		ctx.TokenType = token
	}
	return ctx
}
