package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// DietsCSV is a small dataset in the layout of All_Diets.csv. It contains a
// blank protein cell, an unparsable fat cell and a zero carbs value.
const DietsCSV = `Diet_type,Recipe_name,Cuisine_type,Protein(g),Carbs(g),Fat(g),Extraction_day,Extraction_time
paleo,Bone Broth,american,30,10,20,2022-10-16,17:20:09
paleo,Grilled Salmon,nordic,50,0,25,2022-10-16,17:20:09
vegan,Tofu Bowl,asian,20,40,10,2022-10-16,17:20:09
vegan,Lentil Soup,indian,,60,5,2022-10-16,17:20:09
vegan,Chickpea Curry,indian,15,50,abc,2022-10-16,17:20:09
keto,Egg Cups,french,40,5,35,2022-10-16,17:20:09
keto,Steak Salad,american,70,5,45,2022-10-16,17:20:09
`

// WriteCSV writes content to path, creating parent directories.
func WriteCSV(t testing.TB, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
