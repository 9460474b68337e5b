package schema

// Models returns every persisted model in migration order. Tables with
// foreign references come after the tables they reference.
func Models() []any {
	return []any{
		&Account{},
		&SigningKey{},
		&TenantBudget{},
		&Reservation{},
		&CreditLot{},
		&LedgerEntry{},
		&Transfer{},
		&ClawbackReceivable{},
		&BYOKKey{},
		&IdempotencyRecord{},
		&Proposal{},
		&Vote{},
		&Delegation{},
		&ReconciliationRun{},
	}
}
