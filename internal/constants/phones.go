package constants

// PhoneDenyList - заглушки и номера поддержки площадок, которые попадаются в разметке
var PhoneDenyList = []string{
	"+43 1 2052376",
	"+43 1 5123456",
	"0800 202 020",
	"+43 1 53170",
	"+43 1 21200",
	"0123456789",
	"01234567",
	"+43 664 0000000",
	"+43 660 0000000",
}
