package domain

// Table — логическое имя таблицы в удаленном хранилище.
type Table string

const (
	TablePatients     Table = "patients"
	TableAppointments Table = "appointments"
	TableDoctors      Table = "doctors"
	TableBilling      Table = "billing"
	TableDepartments  Table = "departments"
	TableInventory    Table = "inventory"
)

// DashboardTables — таблицы, изменения которых влияют на снапшот дашборда.
var DashboardTables = []Table{TablePatients, TableAppointments, TableDoctors, TableBilling}

// AllTables — все таблицы с триггером hms_notify_change().
var AllTables = []Table{TablePatients, TableAppointments, TableDoctors, TableBilling, TableDepartments, TableInventory}

func (t Table) Valid() bool {
	switch t {
	case TablePatients, TableAppointments, TableDoctors, TableBilling, TableDepartments, TableInventory:
		return true
	}
	return false
}
