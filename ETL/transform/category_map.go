package transform

import (
	"strings"

	"github.com/LilVoxy/appmarket_intel/ETL/models"
)

// UncategorizedLabel - единая категория для записей без метки категории
const UncategorizedLabel = "Uncategorized"

// CategoryMap переводит метки категорий платформ в единый словарь.
// Таблица неизменяема после создания и передается в Unifier явно.
type CategoryMap struct {
	byPlatform map[models.Platform]map[string]string
}

// NewCategoryMap создает таблицу соответствия из меток Android и iOS
func NewCategoryMap(android, ios map[string]string) *CategoryMap {
	cm := &CategoryMap{byPlatform: map[models.Platform]map[string]string{
		models.PlatformAndroid: make(map[string]string, len(android)),
		models.PlatformIOS:     make(map[string]string, len(ios)),
	}}
	for k, v := range android {
		cm.byPlatform[models.PlatformAndroid][k] = v
	}
	for k, v := range ios {
		cm.byPlatform[models.PlatformIOS][k] = v
	}
	return cm
}

// DefaultCategoryMap возвращает стандартную таблицу категорий Google Play и App Store
func DefaultCategoryMap() *CategoryMap {
	return NewCategoryMap(map[string]string{
		"ART_AND_DESIGN":      "Creative",
		"AUTO_AND_VEHICLES":   "Lifestyle",
		"BEAUTY":              "Lifestyle",
		"BOOKS_AND_REFERENCE": "Education",
		"BUSINESS":            "Business",
		"COMICS":              "Entertainment",
		"COMMUNICATION":       "Social",
		"DATING":              "Social",
		"EDUCATION":           "Education",
		"ENTERTAINMENT":       "Entertainment",
		"EVENTS":              "Lifestyle",
		"FAMILY":              "Family",
		"FINANCE":             "Finance",
		"FOOD_AND_DRINK":      "Food & Drink",
		"GAME":                "Games",
		"HEALTH_AND_FITNESS":  "Health & Fitness",
		"HOUSE_AND_HOME":      "Lifestyle",
		"LIBRARIES_AND_DEMO":  "Developer Tools",
		"LIFESTYLE":           "Lifestyle",
		"MAPS_AND_NAVIGATION": "Navigation",
		"MEDICAL":             "Medical",
		"MUSIC_AND_AUDIO":     "Music",
		"NEWS_AND_MAGAZINES":  "News",
		"PARENTING":           "Family",
		"PERSONALIZATION":     "Utilities",
		"PHOTOGRAPHY":         "Photo & Video",
		"PRODUCTIVITY":        "Productivity",
		"SHOPPING":            "Shopping",
		"SOCIAL":              "Social",
		"SPORTS":              "Sports",
		"TOOLS":               "Utilities",
		"TRAVEL_AND_LOCAL":    "Travel",
		"VIDEO_PLAYERS":       "Photo & Video",
		"WEATHER":             "Weather",
	}, map[string]string{
		"Games":             "Games",
		"Business":          "Business",
		"Education":         "Education",
		"Entertainment":     "Entertainment",
		"Finance":           "Finance",
		"Health & Fitness":  "Health & Fitness",
		"Lifestyle":         "Lifestyle",
		"Music":             "Music",
		"News":              "News",
		"Photo & Video":     "Photo & Video",
		"Productivity":      "Productivity",
		"Social Networking": "Social",
		"Sports":            "Sports",
		"Travel":            "Travel",
		"Utilities":         "Utilities",
		"Shopping":          "Shopping",
		"Food & Drink":      "Food & Drink",
		"Medical":           "Medical",
		"Navigation":        "Navigation",
		"Weather":           "Weather",
		"Reference":         "Education",
	})
}

// Map возвращает единую категорию для метки платформы.
// Неизвестная метка возвращается как есть, пустая - UncategorizedLabel.
func (cm *CategoryMap) Map(platform models.Platform, label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return UncategorizedLabel
	}
	if unified, ok := cm.byPlatform[platform][label]; ok {
		return unified
	}
	return label
}

// Known сообщает, есть ли метка в таблице платформы
func (cm *CategoryMap) Known(platform models.Platform, label string) bool {
	_, ok := cm.byPlatform[platform][strings.TrimSpace(label)]
	return ok
}
