package consolidate

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/helio/keyword-mapper/internal/types"
)

// The categorization vocabulary lives in categories.json so the lists can
// grow without code changes.

//go:embed categories.json
var categoryFiles embed.FS

var (
	categoryIndex     map[string]types.TermCategory
	categoryIndexOnce sync.Once
)

// categoryOrder resolves terms that appear in more than one list: the most
// specific class wins.
var categoryOrder = []types.TermCategory{
	types.CategoryLanguage,
	types.CategoryFramework,
	types.CategoryTool,
	types.CategoryMethodology,
	types.CategorySoftSkill,
}

func loadCategoryIndex() map[string]types.TermCategory {
	categoryIndexOnce.Do(func() {
		data, err := categoryFiles.ReadFile("categories.json")
		if err != nil {
			panic(fmt.Sprintf("read embedded category lists: %v", err))
		}
		var lists map[string][]string
		if err := json.Unmarshal(data, &lists); err != nil {
			panic(fmt.Sprintf("parse embedded category lists: %v", err))
		}

		categoryIndex = make(map[string]types.TermCategory)
		for i := len(categoryOrder) - 1; i >= 0; i-- {
			category := categoryOrder[i]
			for _, term := range lists[string(category)] {
				categoryIndex[strings.ToLower(term)] = category
			}
		}
	})
	return categoryIndex
}

// Categorize classifies a term against the curated word lists. Unmatched
// terms fall into CategoryOther.
func Categorize(term string) types.TermCategory {
	index := loadCategoryIndex()
	key := strings.ToLower(strings.TrimSpace(term))
	if category, ok := index[key]; ok {
		return category
	}
	// Compound terms like "Vue.js 3" or "AWS Lambda" still classify by
	// their known head token.
	if head, _, found := strings.Cut(key, " "); found {
		if category, ok := index[head]; ok {
			return category
		}
	}
	return types.CategoryOther
}
