package portfolio

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// WidgetIDGenerator produces display ids for new widgets
type WidgetIDGenerator interface {
	Next(widgetType string, index int) string
}

// SequenceIDs yields {type}-{index}, where index is the widget's position in the portfolio
type SequenceIDs struct{}

// Next implements WidgetIDGenerator
func (SequenceIDs) Next(widgetType string, index int) string {
	return fmt.Sprintf("%s-%d", widgetType, index)
}

// RandomIDs yields {type}-{8 hex chars of a random UUID}
type RandomIDs struct{}

// Next implements WidgetIDGenerator
func (RandomIDs) Next(widgetType string, _ int) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return widgetType + "-" + hex[:8]
}

// NewWidgetIDGenerator maps a configured style name to a generator.
// Anything other than "random" yields SequenceIDs.
func NewWidgetIDGenerator(style string) WidgetIDGenerator {
	if style == "random" {
		return RandomIDs{}
	}
	return SequenceIDs{}
}
