package models

// ContractType is a customary contract template
type ContractType string

const (
	ContractSaleMovable         ContractType = "sale_movable"
	ContractFixedTermEmployment ContractType = "fixed_term_employment"
	ContractCommercialAgency    ContractType = "commercial_agency"
	ContractServices            ContractType = "services"
)

// ContractTemplate describes a contract the drafting service can produce
type ContractTemplate struct {
	Type  ContractType `json:"type"`
	Title string       `json:"title"`
}

// ContractTemplates lists the supported templates in display order
var ContractTemplates = []ContractTemplate{
	{Type: ContractSaleMovable, Title: "عقد بيع منقول"},
	{Type: ContractFixedTermEmployment, Title: "عقد عمل محدد المدة"},
	{Type: ContractCommercialAgency, Title: "وكالة تجارية"},
	{Type: ContractServices, Title: "عقد تقديم خدمات"},
}

// FindContractTemplate returns the template for t, or nil
func FindContractTemplate(t ContractType) *ContractTemplate {
	for i := range ContractTemplates {
		if ContractTemplates[i].Type == t {
			return &ContractTemplates[i]
		}
	}
	return nil
}
