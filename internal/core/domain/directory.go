package domain

// Customer is the subset of the remote customer record the board needs.
type Customer struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Username string `json:"username"`
}

// DisplayName renders a customer as "name (email)".
func (c Customer) DisplayName() string {
	return c.Name + " (" + c.Email + ")"
}

// Employee is a staff member that can be assigned to tickets.
type Employee struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Directory is an id-indexed lookup of customers and employees.
type Directory struct {
	customers map[string]Customer
	employees map[string]Employee
	order     []string
}

// NewDirectory indexes the given lists. Employee order is preserved for
// the assignment selector.
func NewDirectory(customers []Customer, employees []Employee) *Directory {
	d := &Directory{
		customers: make(map[string]Customer, len(customers)),
		employees: make(map[string]Employee, len(employees)),
		order:     make([]string, 0, len(employees)),
	}
	for _, c := range customers {
		d.customers[c.ID] = c
	}
	for _, e := range employees {
		if _, seen := d.employees[e.ID]; !seen {
			d.order = append(d.order, e.ID)
		}
		d.employees[e.ID] = e
	}
	return d
}

// Customer looks up a customer by id.
func (d *Directory) Customer(id string) (Customer, bool) {
	if d == nil {
		return Customer{}, false
	}
	c, ok := d.customers[id]
	return c, ok
}

// Employee looks up an employee by id.
func (d *Directory) Employee(id string) (Employee, bool) {
	if d == nil {
		return Employee{}, false
	}
	e, ok := d.employees[id]
	return e, ok
}

// Employees returns the employees in their original order.
func (d *Directory) Employees() []Employee {
	if d == nil {
		return nil
	}
	out := make([]Employee, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.employees[id])
	}
	return out
}
