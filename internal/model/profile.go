package model

// ProfileStatus is the lifecycle flag of a profile record.
type ProfileStatus string

const (
	ProfileStatusActive      ProfileStatus = "active"
	ProfileStatusDeactivated ProfileStatus = "deactivated"
)

// Field names of tbl_User records.
const (
	FieldUserEmail       = "v_UserEmail"
	FieldFirstName       = "v_FirstName"
	FieldMiddleName      = "v_MiddleName"
	FieldLastName        = "v_LastName"
	FieldPhone           = "v_PhoneNum"
	FieldStudentID       = "v_StudentId"
	FieldRegion          = "v_Region"
	FieldProvince        = "v_Province"
	FieldMunicipality    = "v_Municipality"
	FieldBarangay        = "v_Barangay"
	FieldZipCode         = "v_ZipCode"
	FieldStatus          = "v_Status"
	FieldBalance         = "v_StudentBalance"
	FieldTotalIncome     = "v_StudentTotalIncome"
	FieldTotalExpenses   = "v_StudentTotalExpenses"
	FieldProfileComplete = "v_ProfileComplete"
	FieldRole            = "v_UserRole"
	FieldCardUID         = "v_CardUID"
	FieldNFCID           = "v_NFCId"
	FieldCreatedAt       = "v_CreatedAt"
)

// RoleStudent is the role assigned at sign-up.
const RoleStudent = "Student"

// ProfileRecord is the stored per-user record, keyed by user id.
type ProfileRecord struct {
	UserID        string
	Email         string
	FirstName     string
	MiddleName    string
	LastName      string
	Phone         string
	StudentID     string
	Region        string
	Province      string
	Municipality  string
	Barangay      string
	ZipCode       string
	Role          string
	Status        ProfileStatus
	Balance       float64
	TotalIncome   float64
	TotalExpenses float64
	// ProfileComplete is true only when the stored flag is explicitly true.
	ProfileComplete bool
}

// ProfileRecordFromFields decodes a tbl_User payload.
func ProfileRecordFromFields(userID string, f Fields) ProfileRecord {
	return ProfileRecord{
		UserID:          userID,
		Email:           f.String(FieldUserEmail),
		FirstName:       f.String(FieldFirstName),
		MiddleName:      f.String(FieldMiddleName),
		LastName:        f.String(FieldLastName),
		Phone:           f.String(FieldPhone),
		StudentID:       f.String(FieldStudentID),
		Region:          f.String(FieldRegion),
		Province:        f.String(FieldProvince),
		Municipality:    f.String(FieldMunicipality),
		Barangay:        f.String(FieldBarangay),
		ZipCode:         f.String(FieldZipCode),
		Role:            f.String(FieldRole),
		Status:          ProfileStatus(f.String(FieldStatus)),
		Balance:         f.Float(FieldBalance),
		TotalIncome:     f.Float(FieldTotalIncome),
		TotalExpenses:   f.Float(FieldTotalExpenses),
		ProfileComplete: f.Bool(FieldProfileComplete),
	}
}

// Deactivated reports whether the record is in the terminal deactivated state.
func (r ProfileRecord) Deactivated() bool {
	return r.Status == ProfileStatusDeactivated
}

// Profile is the display-ready view of a ProfileRecord.
type Profile struct {
	ProfileRecord
	DisplayName string
}

// Complete reports whether the profile-completion screen can be skipped.
func (p Profile) Complete() bool {
	return p.ProfileComplete
}
