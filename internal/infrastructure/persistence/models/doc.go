// Package models contains the GORM persistence models of the EDI tables.
// They are kept apart from the domain aggregates so the domain stays free of
// ORM tags. Each model converts with ToDomain and a ...ModelFromDomain constructor.
//
//   - base.go: version and timestamp columns shared by aggregates
//   - order.go: orders, order_items, projects
//   - invoice.go: invoices, invoice_items
//   - partner.go: customers, partner users and profiles, contract progress, email logs
//   - sequence.go: sequence_counters
package models

// All returns every model in dependency order, for AutoMigrate in tests
func All() []any {
	return []any{
		&CustomerModel{},
		&ProjectModel{},
		&OrderModel{},
		&OrderItemModel{},
		&InvoiceModel{},
		&InvoiceItemModel{},
		&PartnerUserModel{},
		&PartnerProfileModel{},
		&ContractProgressModel{},
		&SentEmailLogModel{},
		&SequenceCounterModel{},
	}
}
