package commit

import (
	"fmt"
	"log"
	"strings"

	"tagcomplete/internal/domain"
	"tagcomplete/internal/eventbus"
)

// Context provides what a commit needs to run
type Context struct {
	Doc domain.Document
	Bus eventbus.EventBus
}

// Result describes an applied commit
type Result struct {
	Range      domain.MatchRange
	Text       string
	Annotation domain.Annotation
	Cursor     domain.Cursor
}

// Command replaces an active match with an annotated suggestion
type Command struct {
	ctx        *Context
	match      *domain.ActiveMatch
	suggestion domain.Suggestion
}

// NewCommand creates a commit of suggestion over match
func NewCommand(ctx *Context, match *domain.ActiveMatch, suggestion domain.Suggestion) *Command {
	return &Command{
		ctx:        ctx,
		match:      match,
		suggestion: suggestion,
	}
}

// Execute performs the replacement as a single document edit
func (c *Command) Execute() (Result, error) {
	if c.match == nil {
		return Result{}, domain.ErrNoActiveMatch
	}
	if err := c.verify(); err != nil {
		return Result{}, err
	}

	trig := c.match.Trigger
	text := trig.FormatLabel(c.suggestion)
	ann := domain.Annotation{
		Type:       trig.Type,
		Mutability: trig.Mutability,
		Payload:    c.suggestion,
	}

	cursor, err := c.ctx.Doc.ReplaceWithAnnotation(c.match.Range, text, ann)
	if err != nil {
		return Result{}, fmt.Errorf("commit %s: %w", trig.Type, err)
	}

	// Pick up the key the document assigned
	if stored, ok := c.ctx.Doc.AnnotationAt(c.match.Range.BlockID, c.match.Range.Start); ok {
		ann = stored
	}

	res := Result{
		Range:      c.match.Range,
		Text:       text,
		Annotation: ann,
		Cursor:     cursor,
	}
	log.Printf("Committed %s %q at %s:%d", trig.Type, text, c.match.Range.BlockID, c.match.Range.Start)

	if c.ctx.Bus != nil {
		c.ctx.Bus.Publish(domain.AnnotationCommittedEvent{
			Range:      res.Range,
			Text:       res.Text,
			Annotation: res.Annotation,
			Cursor:     res.Cursor,
		})
	}
	return res, nil
}

// verify checks that the document still holds the matched token
func (c *Command) verify() error {
	r := c.match.Range
	block, ok := c.ctx.Doc.Block(r.BlockID)
	if !ok {
		return fmt.Errorf("commit %s: %w", r.BlockID, domain.ErrBlockNotFound)
	}

	runes := []rune(block.Text)
	if r.Start < 0 || r.End > len(runes) || r.Start >= r.End {
		return fmt.Errorf("commit [%d,%d) in %s: %w", r.Start, r.End, r.BlockID, domain.ErrRangeOutOfBounds)
	}
	if !strings.HasPrefix(string(runes[r.Start:r.End]), c.match.Trigger.Prefix) {
		return fmt.Errorf("commit [%d,%d) in %s: %w", r.Start, r.End, r.BlockID, domain.ErrStaleRange)
	}
	return nil
}
