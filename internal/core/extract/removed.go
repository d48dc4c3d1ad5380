package extract

import "strings"

// Фразы страниц снятых с публикации объявлений (сравнение после Fold)
var removedSignatures = FoldAll([]string{
	"anzeige ist nicht mehr verfügbar",
	"anzeige wurde deaktiviert",
	"dieses objekt ist leider nicht mehr verfügbar",
	"objekt wurde bereits vergeben",
	"inserat ist nicht mehr aktiv",
	"expose ist nicht mehr verfügbar",
	"seite nicht gefunden",
	"this listing is no longer available",
	"listing has been removed",
	"this ad is no longer available",
	"page not found",
})

// IsRemoved распознает страницу снятого объявления
func IsRemoved(body string) bool {
	text := Fold(VisibleText(body))
	_, ok := ContainsAnyFolded(text, removedSignatures)
	return ok || strings.Contains(body, `"adStatus":"deactivated"`)
}
