package domain

import "fmt"

// Feed - единица обхода (источник × категория × регион).
// Key используется как ключ курсора пагинации.
type Feed struct {
	Key         string
	Source      Source
	Category    Category
	Region      Region
	URLTemplate string
}

// FeedKey строит ключ фида
func FeedKey(source Source, category Category, region Region) string {
	return fmt.Sprintf("%s:%s:%s", source, category, region)
}

// Candidate - одна позиция со страницы выдачи: либо полностью
// извлеченное объявление (inline), либо ссылка на детальную страницу.
type Candidate struct {
	DetailURL string

	// Inline-путь: заполняется, если источник отдает все поля прямо в выдаче
	Listing *Listing
	Verdict *Verdict
}

// IsInline сообщает, что детальную страницу загружать не надо
func (c Candidate) IsInline() bool {
	return c.Verdict != nil
}

// DetailResult - результат разбора детальной страницы
type DetailResult struct {
	Listing *Listing
	Verdict Verdict
	Removed bool
	Reason  string
}
