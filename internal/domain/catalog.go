package domain

// Brand is a car manufacturer from the seeded catalog.
type Brand struct {
	ID         string
	Name       string
	Slug       string
	Popularity int
	Models     []CarModel
}

// CarModel belongs to a brand.
type CarModel struct {
	ID    string
	Name  string
	Slug  string
}

// TuningCategory is a selectable image-tuning preset group.
type TuningCategory struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

// VideoEffect is a selectable short-video effect.
type VideoEffect struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// TuningCategories lists the supported tuning preset keys. Titles are the
// product's Azerbaijani labels.
var TuningCategories = []TuningCategory{
	{Key: "body_kit", Title: "Body Kit"},
	{Key: "bumpers", Title: "Tamponlar"},
	{Key: "hood", Title: "Kapot"},
	{Key: "spoiler", Title: "Spoyler/Antiquet"},
	{Key: "wheels", Title: "Disk/Rim"},
	{Key: "tire_size", Title: "Təkər ölçüsü"},
	{Key: "suspension", Title: "Asqı hündürlüyü"},
	{Key: "lights", Title: "Fənərlər"},
	{Key: "diffuser", Title: "Difuzor"},
	{Key: "side_skirts", Title: "Yan ətəklik"},
	{Key: "vinyl_wrap", Title: "Vinil/Wrap"},
	{Key: "color_finish", Title: "Rəng/Finish"},
	{Key: "accessories", Title: "Əlavə aksesuarlar"},
}

// VideoEffects lists the supported video effect keys.
var VideoEffects = []VideoEffect{
	{Key: "360_spin", Title: "360° Spin", Description: "Avtomobilin tam dövrə fırlanması"},
	{Key: "neon_driveby", Title: "Neon Drive-by", Description: "Neon işıqlar ilə keçid effekti"},
	{Key: "light_sweep", Title: "Light Sweep", Description: "İşıq süpürmə animasiyası"},
	{Key: "showroom_pan", Title: "Showroom Pan", Description: "Salon kamera hərəkəti"},
	{Key: "zoom_reveal", Title: "Zoom Reveal", Description: "Zoom ilə açılış"},
	{Key: "spec_highlight", Title: "Spec Highlight", Description: "Xüsusiyyətləri vurğulama"},
}

// KnownTuningPreset reports whether key is a seeded tuning category.
func KnownTuningPreset(key string) bool {
	for _, c := range TuningCategories {
		if c.Key == key {
			return true
		}
	}
	return false
}

// KnownVideoEffect reports whether key is a seeded video effect.
func KnownVideoEffect(key string) bool {
	for _, e := range VideoEffects {
		if e.Key == key {
			return true
		}
	}
	return false
}
