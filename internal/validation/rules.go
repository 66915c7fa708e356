package validation

// Field names as clients send them.
const (
	FieldLocation    = "Location"
	FieldDate        = "Date"
	FieldTime        = "Time"
	FieldDescription = "description"
	FieldDoctor      = "doctor"
	FieldUserID      = "userID"

	FieldName      = "name"
	FieldHospital  = "hospital"
	FieldSpecialty = "specialty"

	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
)

// AppointmentRules covers appointment create and update. ownerRequired
// demands a client supplied userID.
func AppointmentRules(ownerRequired bool) []Rule {
	return []Rule{
		{Field: FieldLocation, Required: true, Type: String, Max: 255},
		{Field: FieldDate, Required: true, Type: Any},
		{Field: FieldTime, Required: true, Type: Any},
		{Field: FieldDescription, Required: true, Type: Text},
		{Field: FieldDoctor, Required: true, Type: String, Max: 255},
		{Field: FieldUserID, Required: ownerRequired, Type: String, Max: 255},
	}
}

func DoctorRules() []Rule {
	return []Rule{
		{Field: FieldName, Required: true, Type: String, Max: 255},
		{Field: FieldHospital, Required: true, Type: String, Max: 255},
		{Field: FieldSpecialty, Required: true, Type: String, Max: 255},
	}
}

func RegisterRules(emailTaken UniqueFunc) []Rule {
	return []Rule{
		{Field: FieldName, Required: true, Type: String, Max: 255},
		{Field: FieldEmail, Required: true, Type: Email, Max: 255, Unique: emailTaken},
		{Field: FieldPassword, Required: true, Type: String, Min: 8, Max: 255},
	}
}

func LoginRules() []Rule {
	return []Rule{
		{Field: FieldEmail, Required: true, Type: Email, Max: 255},
		{Field: FieldPassword, Required: true, Type: String, Min: 8, Max: 255},
	}
}

// ProfileRules covers profile updates; every field is optional. emailTaken
// must ignore the caller's own row.
func ProfileRules(emailTaken UniqueFunc) []Rule {
	return []Rule{
		{Field: FieldName, Type: String, Max: 255},
		{Field: FieldEmail, Type: Email, Max: 255, Unique: emailTaken},
		{Field: FieldCurrentPassword, Type: String, RequiredWith: FieldNewPassword},
		{Field: FieldNewPassword, Type: String, Min: 8, Max: 255},
	}
}
