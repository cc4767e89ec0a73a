// Package entities defines the GORM models for the client configuration
// tables. Column names follow the legacy camelCase layout shared with the
// dashboard, so every field carries an explicit column tag.
//
// Defaults live in the schema catalog and the resolver, never in gorm
// default tags: GORM substitutes the default for zero values on insert, which
// would turn an explicit 0 or False into the default.
package entities

// ClientAppDetails is the branding and display record of a client. A client
// exists if and only if one of these rows exists.
type ClientAppDetails struct {
	ID                     uint   `gorm:"column:id;primaryKey" json:"id"`
	ClientName             string `gorm:"column:clientName;size:255;not null" json:"clientName"`
	ClientKey              string `gorm:"column:clientKey;size:36" json:"clientKey"`
	DefaultLanguage        string `gorm:"column:defaultLanguage;size:50" json:"defaultLanguage"`
	ListOfLanguage         string `gorm:"column:listOfLanguage;type:text" json:"listOfLanguage"`
	DefaultDisplayLanguage string `gorm:"column:defaultDisplayLanguage;size:50" json:"defaultDisplayLanguage"`
	ListOfDisplayLanguage  string `gorm:"column:listOfDisplayLanguage;type:text" json:"listOfDisplayLanguage"`
	HeaderLogo             string `gorm:"column:headerLogo;size:255" json:"headerLogo"`
	FooterLogo             string `gorm:"column:footerLogo;size:255" json:"footerLogo"`
	PoweredByLogo          string `gorm:"column:poweredByLogo;size:255" json:"poweredByLogo"`
	ProductLogo            string `gorm:"column:productLogo;size:255" json:"productLogo"`
	HomeLauncherLogo       string `gorm:"column:homeLauncherLogo;size:255" json:"homeLauncherLogo"`
	MenuColor              string `gorm:"column:menuColor;size:50" json:"menuColor"`
	SubMenuColor           string `gorm:"column:subMenuColor;size:50" json:"subMenuColor"`
	TextColor              string `gorm:"column:textColor;size:50" json:"textColor"`
	MobileHeaderColor      string `gorm:"column:mobileHeaderColor;size:50" json:"mobileHeaderColor"`
	MobileMenuBgColor      string `gorm:"column:mobileMenuBgColor;size:50" json:"mobileMenuBgColor"`
	HomeBgColor            string `gorm:"column:homeBgColor;size:50" json:"homeBgColor"`
	HeaderText             string `gorm:"column:headerText;size:255" json:"headerText"`
	WelcomeText            string `gorm:"column:welcomeText;size:255" json:"welcomeText"`
	WelcomeBody            string `gorm:"column:welcomeBody;type:text" json:"welcomeBody"`
}

// TableName returns the table name for GORM.
func (ClientAppDetails) TableName() string {
	return TableClientAppDetails
}
