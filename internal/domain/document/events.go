package document

import (
	"github.com/turtacn/policylens/pkg/types/common"
)

// TopicDocumentIngested is published after an upload has been extracted and
// stored.
const TopicDocumentIngested = "document.ingested"

// IngestedEvent announces a newly stored document.
type IngestedEvent struct {
	common.BaseEvent

	Filename  string  `json:"filename"`
	DocType   DocType `json:"doc_type"`
	WordCount int     `json:"word_count"`
}

// NewIngestedEvent builds an IngestedEvent from a stored document.
func NewIngestedEvent(doc *Document) IngestedEvent {
	return IngestedEvent{
		BaseEvent: common.NewBaseEvent(string(doc.ID)),
		Filename:  doc.Filename,
		DocType:   doc.DocType,
		WordCount: doc.WordCount,
	}
}
