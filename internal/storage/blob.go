package storage

import "context"

const (
	kindUnits   = "units"
	kindReports = "reports"
)

// blob names one stored object: a unit or a report of a project.
type blob struct {
	project string
	kind    string
	id      string
}

func unitBlob(project, unitID string) blob  { return blob{project: project, kind: kindUnits, id: unitID} }
func reportBlob(project, runID string) blob { return blob{project: project, kind: kindReports, id: runID} }

// key is the layout shared by every backend: <project>/<kind>/<id>.json.
func (b blob) key() string {
	return b.project + "/" + b.kind + "/" + b.id + ".json"
}

// contentType distinguishes encoded units from rendered reports for object
// stores that serve blobs directly.
func (b blob) contentType() string {
	if b.kind == kindUnits {
		return "application/vnd.typedensity.unit+json"
	}
	return "application/vnd.typedensity.report+json"
}

// metadata is attached to objects by backends that support it.
func (b blob) metadata() map[string]string {
	md := map[string]string{"project": b.project, "kind": b.kind}
	if b.kind == kindUnits {
		md["unit-id"] = b.id
	} else {
		md["run-id"] = b.id
	}
	return md
}

// blobStore is the byte-level half of a backend.
type blobStore interface {
	put(ctx context.Context, b blob, data []byte) error
	get(ctx context.Context, b blob) ([]byte, error)
}

// blobClient implements Client on top of a blobStore. Backends embed it.
type blobClient struct {
	store blobStore
}

// PutUnit stores an encoded unit.
func (c blobClient) PutUnit(ctx context.Context, project, unitID string, data []byte) error {
	return c.store.put(ctx, unitBlob(project, unitID), data)
}

// GetUnit returns an encoded unit.
func (c blobClient) GetUnit(ctx context.Context, project, unitID string) ([]byte, error) {
	return c.store.get(ctx, unitBlob(project, unitID))
}

// PutReport stores a study report.
func (c blobClient) PutReport(ctx context.Context, project, runID string, data []byte) error {
	return c.store.put(ctx, reportBlob(project, runID), data)
}

// GetReport returns a study report.
func (c blobClient) GetReport(ctx context.Context, project, runID string) ([]byte, error) {
	return c.store.get(ctx, reportBlob(project, runID))
}
