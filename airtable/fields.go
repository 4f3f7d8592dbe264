package airtable

// Table names and field names of the portal base. Airtable identifies fields
// by display name in the REST API; keeping every name here means a base-side
// rename breaks exactly one constant.

// Tables.
const (
	TableEvents     = "Events"
	TableClasses    = "Classes"
	TableGroups     = "Groups"
	TableSongs      = "Songs"
	TableAudioFiles = "AudioFiles"
	TableOrders     = "ClothingOrders"
	TableOrderItems = "OrderItems"
	TableTasks      = "Tasks"
	TableAccounts   = "Accounts"
	TableParents    = "Parents"
)

// Events fields.
const (
	FieldEventSchool       = "School"
	FieldEventDate         = "Date"
	FieldEventType         = "Type"
	FieldEventSimplybookID = "SimplybookID"
	FieldEventStaff        = "Staff"
	FieldEventEngineers    = "Engineers"
	FieldEventStage        = "PipelineStage"
	FieldEventPortalStatus = "PortalStatus"
	FieldEventStatus       = "Status"
	FieldEventPublished    = "Published"
	FieldEventTeacherCode  = "TeacherCode"
)

// Classes fields.
const (
	FieldClassEvent         = "Event"
	FieldClassName          = "Name"
	FieldClassExpectedSongs = "ExpectedSongs"
)

// Groups fields.
const (
	FieldGroupEvent   = "Event"
	FieldGroupName    = "Name"
	FieldGroupMembers = "MemberClasses"
)

// Songs fields.
const (
	FieldSongEvent         = "Event"
	FieldSongClass         = "Class"
	FieldSongTitle         = "Title"
	FieldSongIsSchulsong   = "IsSchulsong"
	FieldSongPreviewKey    = "PreviewKey"
	FieldSongFinalMP3Key   = "FinalMP3Key"
	FieldSongFinalWAVKey   = "FinalWAVKey"
	FieldSongEngineer      = "Engineer"
	FieldSongApproval      = "ApprovalStatus"
	FieldSongAdminApproved = "AdminApproved"
	FieldSongApprovedAt    = "ApprovedAt"
)

// AudioFiles fields.
const (
	FieldAudioEvent      = "Event"
	FieldAudioClass      = "Class"
	FieldAudioSong       = "Song"
	FieldAudioType       = "Type"
	FieldAudioStorageKey = "StorageKey"
	FieldAudioFilename   = "Filename"
	FieldAudioSize       = "Size"
	FieldAudioUploadedAt = "UploadedAt"
)

// ClothingOrders / OrderItems fields.
const (
	FieldOrderEvent     = "Event"
	FieldOrderSizes     = "SizesJSON"
	FieldOrderTotal     = "Total"
	FieldOrderGoID      = "GoID"
	FieldOrderUpdatedAt = "UpdatedAt"

	FieldItemEvent    = "Event"
	FieldItemSize     = "Size"
	FieldItemQuantity = "Quantity"
)

// Tasks fields.
const (
	FieldTaskEvent    = "Event"
	FieldTaskKind     = "Kind"
	FieldTaskOrders   = "OrderIDs"
	FieldTaskDeadline = "Deadline"
	FieldTaskDone     = "Done"
	FieldTaskGoID     = "GoID"
)

// Accounts fields.
const (
	FieldAccountEmail        = "Email"
	FieldAccountName         = "Name"
	FieldAccountRole         = "Role"
	FieldAccountPasswordHash = "PasswordHash"
)

// Parents fields.
const (
	FieldParentEvent = "Event"
	FieldParentClass = "Class"
	FieldParentName  = "Name"
	FieldParentEmail = "Email"
)
