package dto

// AdminUserRequest is the admin-side account payload for create and
// update. On update, empty fields keep their current value.
type AdminUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}
