package assembler

import "fmt"

const (
	// FixedPages are cover, two details pages and the closing page
	FixedPages = 4

	pageWidthMM = 210.0

	shortBookletType  = "32 pages"
	shortBookletPages = 32
	longBookletPages  = 64
)

// TotalPages is 32 for the "32 pages" booklet and 64 for anything else.
func TotalPages(passportType string) int {
	if passportType == shortBookletType {
		return shortBookletPages
	}
	return longBookletPages
}

// FillerPages is the number of blank watermarked pages between the second
// details page and the closing page.
func FillerPages(passportType string) int {
	return TotalPages(passportType) - FixedPages
}

// Filename of the generated document for a document id such as LS-42.
func Filename(documentID string) string {
	return fmt.Sprintf("Lesotho_Passport_%s.pdf", documentID)
}
