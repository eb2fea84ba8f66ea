package template

// DefaultCatalog returns the seeded fit-out template catalog used when no
// catalog file is configured.
func DefaultCatalog() *Catalog {
	return NewCatalog(append(defaultSystemTemplates(), defaultCategoryTemplates()...))
}

// defaultSystemTemplates are project-wide tasks produced once per project,
// independent of BOQ contents.
func defaultSystemTemplates() []TaskTemplate {
	return []TaskTemplate{
		{
			ID:          "tpl-sys-kickoff",
			Stakeholder: StakeholderPM,
			Title:       "Project kickoff & site survey",
			Description: "Confirm site access, measurements and client sign-off on scope.",
			Priority:    PriorityHigh,
		},
		{
			ID:          "tpl-sys-boq-freeze",
			Stakeholder: StakeholderPM,
			Title:       "Freeze BOQ & issue purchase orders",
			Priority:    PriorityHigh,
		},
		{
			ID:          "tpl-sys-handover",
			Stakeholder: StakeholderQC,
			Title:       "Final snag walk & handover",
			Description: "Full-site QC pass before client handover.",
			Priority:    PriorityHigh,
		},
	}
}

// defaultCategoryTemplates map BOQ product categories to trade work items.
func defaultCategoryTemplates() []TaskTemplate {
	return []TaskTemplate{
		{
			ID:              "tpl-controls-install",
			ProductCategory: "Controls",
			Stakeholder:     StakeholderInstaller,
			Title:           "Install",
			IsBlocking:      true,
		},
		{
			ID:              "tpl-controls-program",
			ProductCategory: "Controls",
			Stakeholder:     StakeholderProgrammer,
			Title:           "Program & commission",
			Priority:        PriorityHigh,
		},
		{
			ID:              "tpl-controls-qc",
			ProductCategory: "Controls",
			Stakeholder:     StakeholderQC,
			Title:           "QC check",
		},
		{
			ID:              "tpl-lighting-install",
			ProductCategory: "Lighting",
			Stakeholder:     StakeholderInstaller,
			Title:           "Install & aim",
			IsBlocking:      true,
		},
		{
			ID:              "tpl-lighting-qc",
			ProductCategory: "Lighting",
			Stakeholder:     StakeholderQC,
			Title:           "Lux level check",
		},
		{
			ID:              "tpl-av-install",
			ProductCategory: "AV",
			Stakeholder:     StakeholderInstaller,
			Title:           "Mount & cable",
		},
		{
			ID:              "tpl-av-program",
			ProductCategory: "AV",
			Stakeholder:     StakeholderProgrammer,
			Title:           "Configure sources",
		},
		{
			ID:              "tpl-furniture-install",
			ProductCategory: "Furniture",
			Stakeholder:     StakeholderInstaller,
			Title:           "Assemble & place",
			Priority:        PriorityLow,
		},
		{
			ID:              "tpl-network-install",
			ProductCategory: "Network",
			Stakeholder:     StakeholderInstaller,
			Title:           "Rack & patch",
			IsBlocking:      true,
		},
		{
			ID:              "tpl-network-program",
			ProductCategory: "Network",
			Stakeholder:     StakeholderProgrammer,
			Title:           "Provision & test",
			Priority:        PriorityHigh,
		},
	}
}
