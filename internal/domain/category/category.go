// Package category is the catalogue of petition categories the application offers.
package category

import "sort"

// Category describes a petition category.
type Category struct {
	ID             string
	Title          string
	Law            string
	RequiredFields []string
}

var catalogue = map[string]Category{
	"bilişim_suclari": {
		ID: "bilişim_suclari", Title: "Bilişim Suçları Şikayeti", Law: "5237 Sayılı TCK md. 243-245",
		RequiredFields: []string{"paylaşım adresi", "paylaşım tarihi"},
	},
	"trafik_cezasi": {
		ID: "trafik_cezasi", Title: "Trafik Cezası İtirazı", Law: "2918 Sayılı KTK",
		RequiredFields: []string{"plaka", "ceza tarihi", "tebligat tarihi"},
	},
	"tuketici_haklari": {
		ID: "tuketici_haklari", Title: "Tüketici Hakları Başvurusu", Law: "6502 Sayılı Kanun",
		RequiredFields: []string{"ürün", "satıcı", "tarih", "sorun"},
	},
	"kira":           {ID: "kira", Title: "Kira Hukuku", Law: "TBK"},
	"is_hukuku":      {ID: "is_hukuku", Title: "İş Hukuku", Law: "İş Kanunu"},
	"sosyal_medya":   {ID: "sosyal_medya", Title: "Bilişim Suçları", Law: "TCK"},
	"dolandiricilik": {ID: "dolandiricilik", Title: "Dolandırıcılık", Law: "TCK"},
	"bankacilik":     {ID: "bankacilik", Title: "Bankacılık", Law: "Bankacılık Kanunu"},
	"kargo":          {ID: "kargo", Title: "Kargo Tazmin", Law: "TTK"},
}

// Lookup returns the category with the given ID.
func Lookup(id string) (Category, bool) {
	c, ok := catalogue[id]
	return c, ok
}

// All returns every category ordered by ID.
func All() []Category {
	out := make([]Category, 0, len(catalogue))
	for _, c := range catalogue {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
