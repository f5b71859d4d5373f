package graphql

const ticketFields = `
      id
      customer
      assignedEmployee
      status
      title
      description
      priority
      agency
      createdAt
      updatedAt`

const (
	queryTickets = `query GetTickets {
    tickets {` + ticketFields + `
    }
  }`

	queryTicket = `query GetTicket($id: String!) {
    ticket(id: $id) {` + ticketFields + `
    }
  }`

	mutationCreateTicket = `mutation CreateTicket($ticketInput: TicketInput!) {
    createTicket(ticketInput: $ticketInput) {` + ticketFields + `
    }
  }`

	mutationUpdateTicket = `mutation UpdateTicket($id: String!, $ticketInput: TicketUpdateInput!) {
    updateTicket(id: $id, ticketInput: $ticketInput) {` + ticketFields + `
    }
  }`

	mutationDeleteTicket = `mutation DeleteTicket($id: String!) {
    deleteTicket(id: $id)
  }`

	queryCustomers = `query GetCustomers {
    customers {
      id
      name
      email
      phone
      username
    }
  }`

	queryEmployees = `query GetEmployees {
    staffMembers {
      id
      name
      email
      username
      role
    }
  }`
)
