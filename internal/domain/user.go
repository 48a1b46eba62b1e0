package domain

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleOperator:
		return Role(s), nil
	case "":
		return RoleOperator, nil
	}
	return "", Validationf("unknown role %q", s)
}

type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
}
