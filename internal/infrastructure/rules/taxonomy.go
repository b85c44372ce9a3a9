package rules

import "github.com/kirillkom/adgm-corporate-agent/internal/core/domain"

// TypeRule maps a document type to its trigger phrases. Lower Order wins ties.
type TypeRule struct {
	Order    int
	Type     string
	Triggers []string
}

// DocumentTypes is the default classification taxonomy.
var DocumentTypes = []TypeRule{
	{Order: 1, Type: domain.TypeArticlesOfAssociation, Triggers: []string{
		"articles of association", "aoa", "articles", "memorandum and articles", "company constitution",
	}},
	{Order: 2, Type: domain.TypeMemorandumOfAssociation, Triggers: []string{
		"memorandum of association", "moa", "memorandum", "company memorandum",
	}},
	{Order: 3, Type: domain.TypeBoardResolution, Triggers: []string{
		"board resolution", "resolution", "board meeting", "directors resolution", "resolution of", "incorporating shareholders",
	}},
	{Order: 4, Type: domain.TypeShareholderResolution, Triggers: []string{
		"shareholder resolution", "shareholders", "members resolution",
	}},
	{Order: 5, Type: domain.TypeIncorporationForm, Triggers: []string{
		"incorporation", "application form", "registration form", "company registration",
	}},
	{Order: 6, Type: domain.TypeUBODeclaration, Triggers: []string{
		"ubo", "ultimate beneficial owner", "declaration", "beneficial ownership",
	}},
	{Order: 7, Type: domain.TypeRegisterMembers, Triggers: []string{
		"register of members", "register of directors", "members register", "directors register",
	}},
	{Order: 8, Type: domain.TypeEmploymentContract, Triggers: []string{
		"employment contract", "employment agreement", "service agreement", "employment terms",
	}},
	{Order: 9, Type: domain.TypeLicenseApplication, Triggers: []string{
		"license application", "licensing", "permit application",
	}},
	{Order: 10, Type: domain.TypeCompliancePolicy, Triggers: []string{
		"compliance policy", "risk policy", "internal policy",
	}},
	{Order: 11, Type: domain.TypeCommercialAgreement, Triggers: []string{
		"commercial agreement", "service agreement", "consultancy agreement",
	}},
}
