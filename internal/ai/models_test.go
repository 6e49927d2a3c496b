package ai

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEstimateCostUSD(t *testing.T) {
	cost, ok := EstimateCostUSD("gpt-4o", 1000, 1000)
	if !ok {
		t.Fatalf("gpt-4o should be in the catalog")
	}
	if cost < 0.0124 || cost > 0.0126 {
		t.Fatalf("unexpected cost %f", cost)
	}
	if _, ok := EstimateCostUSD("no-such-model", 1, 1); ok {
		t.Fatalf("unknown model should not be priced")
	}
}

func TestDefaultModelInCatalog(t *testing.T) {
	mi, ok := LookupModel(DefaultModel)
	if !ok || mi.Provider != ProviderOpenAI {
		t.Fatalf("default model missing: %+v", mi)
	}
}

func TestCatalogSortedAndMergeable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "models.json")
	if err := os.WriteFile(path, []byte(`{"zz-local:1b":{"Provider":"ollama","ContextTokens":2048}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := LoadCatalogFromJSON(path)
	if err != nil {
		t.Fatalf("LoadCatalogFromJSON: %v", err)
	}
	MergeCatalog(m)
	t.Cleanup(func() { delete(models, "zz-local:1b") })

	mi, ok := LookupModel("zz-local:1b")
	if !ok || mi.Name != "zz-local:1b" || mi.ContextTokens != 2048 {
		t.Fatalf("merged entry: %+v", mi)
	}
	cat := Catalog()
	for i := 1; i < len(cat); i++ {
		a, b := cat[i-1], cat[i]
		if a.Provider > b.Provider || (a.Provider == b.Provider && a.Name > b.Name) {
			t.Fatalf("catalog not sorted at %d: %s/%s then %s/%s", i, a.Provider, a.Name, b.Provider, b.Name)
		}
	}
}
