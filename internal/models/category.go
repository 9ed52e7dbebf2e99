package models

import "strings"

// Category представляет категорию из закрытого справочника
type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryBooks       Category = "books"
	CategoryClothing    Category = "clothing"
	CategoryFurniture   Category = "furniture"
	CategorySports      Category = "sports"
	CategoryMusic       Category = "music"
	CategoryKitchen     Category = "kitchen"
	CategoryStationery  Category = "stationery"
	CategoryGames       Category = "games"
	CategoryBikes       Category = "bikes"
	CategoryOther       Category = "other"
)

var knownCategories = map[Category]bool{
	CategoryElectronics: true,
	CategoryBooks:       true,
	CategoryClothing:    true,
	CategoryFurniture:   true,
	CategorySports:      true,
	CategoryMusic:       true,
	CategoryKitchen:     true,
	CategoryStationery:  true,
	CategoryGames:       true,
	CategoryBikes:       true,
	CategoryOther:       true,
}

// Valid проверяет, входит ли категория в справочник
func (c Category) Valid() bool {
	return knownCategories[c]
}

// ParseCategory нормализует строку и проверяет ее по справочнику
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	return c, c.Valid()
}

// CategoryStats содержит счетчики спроса и предложения по категории
type CategoryStats struct {
	Category Category `json:"category"`
	Demand   int      `json:"demand"`
	Supply   int      `json:"supply"`
}

// Scarce сообщает, что спрос на категорию превышает предложение
func (s CategoryStats) Scarce() bool {
	return s.Demand > s.Supply
}
