package domain

import "github.com/google/uuid"

// Метки изменений
const (
	LabelPriceDecreased = "price decreased"
	LabelPriceChanged   = "price changed"
	LabelDescription    = "description changed"
	LabelPhotos         = "photos changed"
	LabelTextAndPhotos  = "text and photos changed"
)

// Имена полей в ChangeRecord.ChangedFields
const (
	FieldPrice       = "price"
	FieldDescription = "description"
	FieldImages      = "images"
)

// ChangeRecord - результат сравнения с последней сохраненной версией.
// Label пустой, если изменений нет.
type ChangeRecord struct {
	ListingURL    string
	ChangedFields []string
	Label         string
	IsNew         bool
	PreviousPrice int
}

// HasChanges сообщает, есть ли изменения
func (c ChangeRecord) HasChanges() bool {
	return len(c.ChangedFields) > 0
}

// ListingEvent - то, что получает sink
type ListingEvent struct {
	Listing Listing
	Change  ChangeRecord
	CycleID uuid.UUID
	Mode    ScrapeMode
}
