package specification

import "gorm.io/gorm"

// ByLanguage filters corpus documents by letter language
type ByLanguage struct {
	Language string
}

func (s ByLanguage) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("language = ?", s.Language)
}

// ByCompanyName filters corpus documents by exact company name
type ByCompanyName struct {
	CompanyName string
}

func (s ByCompanyName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("company_name = ?", s.CompanyName)
}
