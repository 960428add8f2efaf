package domain

// Document is the rich-text document the engine works against. It owns block
// storage, annotations and the selection; the engine only reads it and asks it
// to perform atomic replacements.
type Document interface {
	// Blocks returns the blocks in document order
	Blocks() []Block
	// Block returns the block with the given id
	Block(id string) (Block, bool)
	// AnnotationAt returns the annotation covering a character, if any
	AnnotationAt(blockID string, offset int) (Annotation, bool)
	// Selection returns the current selection
	Selection() Selection
	// ReplaceWithAnnotation replaces r with text, annotates the inserted text
	// and collapses the selection right after it. Either everything is applied
	// or nothing is.
	ReplaceWithAnnotation(r MatchRange, text string, ann Annotation) (Cursor, error)
	// Decorator returns the installed decorator, or nil
	Decorator() Decorator
	// SetDecorator installs a decorator
	SetDecorator(d Decorator)
}

// Strategy finds character ranges of a block and renders them
type Strategy struct {
	Name   string
	Find   func(doc Document, block Block) []TextRange
	Render func(text string) string
}

// Span is a decorated range produced by a strategy
type Span struct {
	TextRange
	Strategy string
	Render   func(text string) string
}

// Decorator turns a block into decorated spans
type Decorator interface {
	Strategies() []Strategy
	Decorate(doc Document, block Block) []Span
}
