package users

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

// Both payload contracts derive from this single constraint table so the
// creation and update field sets cannot drift apart. Creation marks
// name, mail, and password as required; update accepts any subset but
// rejects a payload with no recognized fields.
var accountFieldRules = map[string][]validation.Rule{
	"name":        {validation.Length(1, 200)},
	"surname":     {validation.Length(0, 200)},
	"mail":        {validation.Length(6, 100), is.Email},
	"password":    {validation.Length(8, 100)},
	"description": {validation.Length(0, 500)},
	"residence":   {validation.Length(0, 200)},
	"birthdate":   {validation.Length(0, 40)},
}

func requiredRules(field string) []validation.Rule {
	return append([]validation.Rule{validation.Required}, accountFieldRules[field]...)
}

func optionalRules(field string) []validation.Rule {
	return accountFieldRules[field]
}

// CreateAccountPayload is the creation contract: name, mail and password
// are required, everything else is optional and empty-allowed.
type CreateAccountPayload struct {
	Name        string `form:"name" json:"name"`
	Surname     string `form:"surname" json:"surname"`
	Mail        string `form:"mail" json:"mail"`
	Password    string `form:"password" json:"password"`
	Description string `form:"description" json:"description"`
	Residence   string `form:"residence" json:"residence"`
	Birthdate   string `form:"birthdate" json:"birthdate"`
}

// Validate will run validation rules
func (p CreateAccountPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, requiredRules("name")...),
		validation.Field(&p.Surname, optionalRules("surname")...),
		validation.Field(&p.Mail, requiredRules("mail")...),
		validation.Field(&p.Password, requiredRules("password")...),
		validation.Field(&p.Description, optionalRules("description")...),
		validation.Field(&p.Residence, optionalRules("residence")...),
		validation.Field(&p.Birthdate, optionalRules("birthdate")...),
	)
}

// UpdateAccountPayload is the update contract: every field optional,
// at least one field must be present. An empty string means "leave
// unchanged", so a field cannot be cleared through this payload.
type UpdateAccountPayload struct {
	Name        string `form:"name" json:"name"`
	Surname     string `form:"surname" json:"surname"`
	Mail        string `form:"mail" json:"mail"`
	Password    string `form:"password" json:"password"`
	Description string `form:"description" json:"description"`
	Residence   string `form:"residence" json:"residence"`
	Birthdate   string `form:"birthdate" json:"birthdate"`
}

// IsEmpty reports whether the payload carries no recognized fields
func (p UpdateAccountPayload) IsEmpty() bool {
	return p.Name == "" &&
		p.Surname == "" &&
		p.Mail == "" &&
		p.Password == "" &&
		p.Description == "" &&
		p.Residence == "" &&
		p.Birthdate == ""
}

// Validate will run validation rules
func (p UpdateAccountPayload) Validate() error {
	if p.IsEmpty() {
		return goerrors.New("at least one field must be provided", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, optionalRules("name")...),
		validation.Field(&p.Surname, optionalRules("surname")...),
		validation.Field(&p.Mail, optionalRules("mail")...),
		validation.Field(&p.Password, optionalRules("password")...),
		validation.Field(&p.Description, optionalRules("description")...),
		validation.Field(&p.Residence, optionalRules("residence")...),
		validation.Field(&p.Birthdate, optionalRules("birthdate")...),
	)
}
