package rbac

const (
	RoleViewer    = "viewer"
	RoleAnnotator = "annotator"
	RoleAdmin     = "admin"
)

const (
	PermDatasetView      = "dataset:view"
	PermDatasetReload    = "dataset:reload"
	PermAnnotationCreate = "annotation:create"
	PermAnnotationExport = "annotation:export"
)

// Default policy. Admin may also reload datasets from disk.
var RolePermissions = map[string][]string{
	RoleViewer: {
		PermDatasetView,
	},
	RoleAnnotator: {
		PermDatasetView,
		"annotation:*",
	},
	RoleAdmin: {
		"*", // everything
	},
}
