package models

// All lists every table the service owns, in migration order.
func All() []any {
	return []any{
		&Team{},
		&Member{},
		&Sequence{},
		&Notification{},
	}
}
