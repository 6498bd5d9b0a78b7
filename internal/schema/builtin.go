package schema

// Builtins returns the templates shipped with chaostab.
func Builtins() []Template {
	return []Template{
		{
			Name:        "user_profiles",
			Description: "User accounts with identity, contact and signup data",
			Fields: []Field{
				{Name: "user_id", Type: RuleUUID},
				{Name: "name", Type: RuleName},
				{Name: "email", Type: RuleEmail},
				{Name: "birthdate", Type: RuleBirthdate, MinAge: 18, MaxAge: 80},
				{Name: "signup_date", Type: RuleDate, Start: "-5y", End: "today"},
				{Name: "country", Type: RuleCountry},
				{Name: "job", Type: RuleJob},
			},
		},
		{
			Name:        "profiles",
			Description: "Compact person profiles used as the default chaos base table",
			Fields: []Field{
				{Name: "full_name", Type: RuleName},
				{Name: "email", Type: RuleEmail},
				{Name: "birthdate", Type: RuleBirthdate, MinAge: 18, MaxAge: 80},
				{Name: "signup_date", Type: RuleDate, Start: "-5y", End: "today"},
				{Name: "country", Type: RuleCountry},
				{Name: "job", Type: RuleJob},
			},
		},
		{
			Name:        "train_passages",
			Description: "Train runs between stations with delays and load",
			Fields: []Field{
				{Name: "train_id", Type: RuleInt, Min: 1000, Max: 9999},
				{Name: "station_from", Type: RuleCity},
				{Name: "station_to", Type: RuleCity},
				{Name: "departure_time", Type: RuleDateTime, Start: "-30d", End: "+30d"},
				{Name: "arrival_time", Type: RuleDateTime, Start: "now", End: "+2h"},
				{Name: "delay_minutes", Type: RuleInt, Min: 0, Max: 180},
				{Name: "passenger_count", Type: RuleInt, Min: 0, Max: 500},
			},
		},
		{
			Name:        "financial_transactions",
			Description: "Card and transfer transactions with monetary amounts",
			Fields: []Field{
				{Name: "transaction_id", Type: RuleUUID},
				{Name: "account_holder", Type: RuleName},
				{Name: "merchant", Type: RuleCompany},
				{Name: "amount", Type: RuleFloat, Min: 1, Max: 5000, Precision: 2},
				{Name: "currency", Type: RuleChoice, Values: []string{"EUR", "USD", "GBP", "CHF", "JPY"}},
				{Name: "category", Type: RuleChoice, Values: []string{"groceries", "travel", "utilities", "dining", "electronics", "health"}},
				{Name: "transaction_time", Type: RuleDateTime, Start: "-90d", End: "now"},
				{Name: "status", Type: RuleChoice, Values: []string{"completed", "pending", "failed", "refunded"}},
			},
		},
		{
			Name:        "iot_sensors",
			Description: "Environmental sensor readings from field devices",
			Fields: []Field{
				{Name: "device_id", Type: RuleInt, Min: 100, Max: 999},
				{Name: "location", Type: RuleCity},
				{Name: "reading_time", Type: RuleDateTime, Start: "-7d", End: "now"},
				{Name: "temperature_c", Type: RuleFloat, Min: -20, Max: 45, Precision: 1},
				{Name: "humidity_pct", Type: RuleFloat, Min: 0, Max: 100, Precision: 1},
				{Name: "battery_pct", Type: RuleInt, Min: 0, Max: 100},
				{Name: "online", Type: RuleBool},
				{Name: "status", Type: RuleChoice, Values: []string{"ok", "warning", "fault", "offline"}},
			},
		},
		{
			Name:        "log_events",
			Description: "Application log lines from a fleet of services",
			Fields: []Field{
				{Name: "event_id", Type: RuleUUID},
				{Name: "timestamp", Type: RuleDateTime, Start: "-1d", End: "now"},
				{Name: "level", Type: RuleChoice, Values: []string{"DEBUG", "INFO", "WARN", "ERROR"}},
				{Name: "service", Type: RuleChoice, Values: []string{"auth", "billing", "search", "gateway", "notifier"}},
				{Name: "host", Type: RuleIPv4},
				{Name: "endpoint", Type: RuleURL},
				{Name: "latency_ms", Type: RuleInt, Min: 1, Max: 5000},
				{Name: "message", Type: RuleSentence, Words: 8},
			},
		},
	}
}
