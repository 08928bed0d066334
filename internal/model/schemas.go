package model

import "bizdesk/internal/table"

var EmployeeSchema = table.Schema[Employee]{
	Collection: "employees",
	IDField:    "employee_id",
	Fields: []table.Field[Employee]{
		{Name: "employee_id", Kind: table.KindNumber, Value: func(e Employee) any { return e.EmployeeID }},
		{Name: "name", Kind: table.KindString, Value: func(e Employee) any { return e.Name }},
		{Name: "email", Kind: table.KindString, Value: func(e Employee) any { return e.Email }},
		{Name: "role", Kind: table.KindString, Value: func(e Employee) any { return e.Role }},
		{Name: "employee_type", Kind: table.KindString, Value: func(e Employee) any { return e.EmployeeType }},
		{Name: "experience", Kind: table.KindNumber, Value: func(e Employee) any { return e.Experience.Float() }},
		{Name: "lpa", Kind: table.KindNumber, Value: func(e Employee) any { return e.LPA.Float() }},
		{Name: "hourly_rate", Kind: table.KindNumber, Value: func(e Employee) any { return e.HourlyRate.Float() }},
		{Name: "org_id", Kind: table.KindNumber, Value: func(e Employee) any { return e.OrgID }},
		{Name: "client_id", Kind: table.KindNumber, Value: func(e Employee) any { return e.ClientID }},
		{Name: "project_id", Kind: table.KindNumber, Value: func(e Employee) any { return e.ProjectID }},
		{Name: "project_manager_id", Kind: table.KindNumber, Value: func(e Employee) any { return e.ProjectManagerID }},
	},
}

var ClientSchema = table.Schema[Client]{
	Collection: "clients",
	IDField:    "clientId",
	Fields: []table.Field[Client]{
		{Name: "clientId", Kind: table.KindNumber, Value: func(c Client) any { return c.ClientID }},
		{Name: "orgId", Kind: table.KindString, Value: func(c Client) any { return c.OrgID }},
		{Name: "name", Kind: table.KindString, Value: func(c Client) any { return c.Name }},
		{Name: "phone", Kind: table.KindString, Value: func(c Client) any { return c.Phone }},
		{Name: "email", Kind: table.KindString, Value: func(c Client) any { return c.Email }},
	},
}

var InvoiceSchema = table.Schema[Invoice]{
	Collection: "invoices",
	IDField:    "transaction_id",
	Fields: []table.Field[Invoice]{
		{Name: "transaction_id", Kind: table.KindNumber, Value: func(i Invoice) any { return i.TransactionID }},
		{Name: "invoice_number", Kind: table.KindString, Value: func(i Invoice) any { return i.InvoiceNumber }},
		{Name: "project_id", Kind: table.KindNumber, Value: func(i Invoice) any { return i.ProjectID }},
		{Name: "client_id", Kind: table.KindNumber, Value: func(i Invoice) any { return i.ClientID }},
		{Name: "finance_user_id", Kind: table.KindNumber, Value: func(i Invoice) any { return i.FinanceUserID }},
		{Name: "amount", Kind: table.KindNumber, Value: func(i Invoice) any { return i.Amount.Float() }},
		{Name: "status", Kind: table.KindString, Value: func(i Invoice) any { return i.Status }},
		{Name: "transaction_date", Kind: table.KindDate, Value: func(i Invoice) any { return i.Date }},
		{Name: "bank_name", Kind: table.KindString, Value: func(i Invoice) any { return i.BankName }},
		{Name: "bank_account_no", Kind: table.KindString, Value: func(i Invoice) any { return i.BankAccountNo }},
		{Name: "bank_payee_name", Kind: table.KindString, Value: func(i Invoice) any { return i.BankPayeeName }},
		{Name: "bank_ifsc", Kind: table.KindString, Value: func(i Invoice) any { return i.BankIFSC }},
	},
}

var ProjectSchema = table.Schema[Project]{
	Collection: "projects",
	IDField:    "project_id",
	Fields: []table.Field[Project]{
		{Name: "project_id", Kind: table.KindNumber, Value: func(p Project) any { return p.ProjectID }},
		{Name: "project_name", Kind: table.KindString, Value: func(p Project) any { return p.Name }},
		{Name: "client_id", Kind: table.KindNumber, Value: func(p Project) any { return p.ClientID }},
		{Name: "status", Kind: table.KindString, Value: func(p Project) any { return p.Status }},
		{Name: "start_date", Kind: table.KindDate, Value: func(p Project) any { return p.StartDate }},
		{Name: "end_date", Kind: table.KindDate, Value: func(p Project) any { return p.EndDate }},
		{Name: "total_budget", Kind: table.KindNumber, Value: func(p Project) any { return p.TotalBudget.Float() }},
		{Name: "allocated_budget", Kind: table.KindNumber, Value: func(p Project) any { return p.AllocatedBudget.Float() }},
		{Name: "remaining_budget", Kind: table.KindNumber, Value: func(p Project) any { return p.RemainingBudget.Float() }},
	},
}

var UserSchema = table.Schema[User]{
	Collection: "users",
	IDField:    "email",
	Fields: []table.Field[User]{
		{Name: "email", Kind: table.KindString, Value: func(u User) any { return u.Email }},
		{Name: "username", Kind: table.KindString, Value: func(u User) any { return u.Username }},
		{Name: "role", Kind: table.KindString, Value: func(u User) any { return u.Role }},
		{Name: "org_id", Kind: table.KindNumber, Value: func(u User) any { return u.OrgID }},
	},
}

var OrganisationSchema = table.Schema[Organisation]{
	Collection: "organizations",
	IDField:    "org_id",
	Fields: []table.Field[Organisation]{
		{Name: "org_id", Kind: table.KindNumber, Value: func(o Organisation) any { return o.OrgID }},
		{Name: "name", Kind: table.KindString, Value: func(o Organisation) any { return o.Name }},
		{Name: "type", Kind: table.KindString, Value: func(o Organisation) any { return o.Type }},
		{Name: "address", Kind: table.KindString, Value: func(o Organisation) any { return o.Address }},
		{Name: "contact_info", Kind: table.KindString, Value: func(o Organisation) any { return o.ContactInfo }},
	},
}
