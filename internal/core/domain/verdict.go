package domain

// Verdict - решение каскада классификации продавца.
// Stage - номер ступени каскада, которая приняла решение.
type Verdict struct {
	Allowed bool
	Stage   int
	Reason  string
}

// ClassificationInput - сигналы о продавце, собранные адаптером
type ClassificationInput struct {
	// Flag: nil - источник не отдает признак
	Flag        *bool
	CompanyName *string
	BodyText    string
}
