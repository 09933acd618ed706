package utils

import (
	"time"

	"github.com/joseph-ayodele/material-adapter/internal/async"
	"github.com/joseph-ayodele/material-adapter/internal/entity"
	"github.com/joseph-ayodele/material-adapter/internal/ingest"
	"github.com/joseph-ayodele/material-adapter/internal/pipeline"
)

// The converters below build the map[string]any trees that
// structpb.NewStruct accepts; slices must be []any.

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func ToPBProfile(p *entity.StudentProfile) map[string]any {
	return map[string]any{
		"id":           p.ID.String(),
		"class_id":     p.ClassID.String(),
		"profile_name": p.ProfileName,
		"fragmentacao": string(p.Fragmentacao),
		"abstracao":    string(p.Abstracao),
		"mediacao":     string(p.Mediacao),
		"dislexia":     string(p.Dislexia),
		"tipo_letra":   string(p.TipoLetra),
		"observacoes":  strOrEmpty(p.Observacoes),
		"created_at":   p.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":   p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func ToPBProfiles(list []*entity.StudentProfile) []any {
	out := make([]any, 0, len(list))
	for _, p := range list {
		out = append(out, ToPBProfile(p))
	}
	return out
}

func ToPBMaterial(r ingest.RegistrationResult) map[string]any {
	return map[string]any{
		"id":          r.MaterialID.String(),
		"file_name":   r.FileName,
		"file_type":   string(r.Format),
		"file_url":    r.FileURL,
		"file_key":    r.FileKey,
		"file_size":   r.Size,
		"sha256":      r.HashHex,
		"uploaded_at": r.UploadedAt.UTC().Format(time.RFC3339),
	}
}

func ToPBDirectory(results []ingest.RegistrationResult, stats ingest.DirStats) map[string]any {
	files := make([]any, 0, len(results))
	for _, r := range results {
		if r.Err != "" {
			files = append(files, map[string]any{"source_path": r.SourcePath, "error": r.Err})
			continue
		}
		m := ToPBMaterial(r)
		m["source_path"] = r.SourcePath
		files = append(files, m)
	}
	return map[string]any{
		"files":     files,
		"scanned":   stats.Scanned,
		"matched":   stats.Matched,
		"succeeded": stats.Succeeded,
		"failed":    stats.Failed,
	}
}

func ToPBBatchResult(res pipeline.BatchResult) map[string]any {
	results := make([]any, 0, len(res.Results))
	for _, r := range res.Results {
		results = append(results, map[string]any{
			"profile_id":          r.ProfileID.String(),
			"profile_name":        r.ProfileName,
			"generated_file_name": r.GeneratedFileName,
			"storage_url":         r.StorageURL,
			"adapted_material_id": r.AdaptedMaterialID.String(),
			"outcome":             string(r.Outcome),
		})
	}
	profiles := make([]any, 0, len(res.Profiles))
	for _, o := range res.Profiles {
		profiles = append(profiles, map[string]any{
			"profile_id": o.ProfileID.String(),
			"status":     string(o.Status),
			"reason":     o.Reason,
		})
	}
	return map[string]any{
		"results":       results,
		"profiles":      profiles,
		"success_count": res.SuccessCount,
		"skipped":       res.Skipped,
		"failed":        res.Failed,
		"cancelled":     res.Cancelled,
	}
}

func ToPBJobStatus(st async.JobStatus) map[string]any {
	out := map[string]any{
		"job_id":       st.Job.ID.String(),
		"material_id":  st.Job.MaterialID.String(),
		"state":        string(st.State),
		"submitted_at": st.Job.SubmittedAt.UTC().Format(time.RFC3339),
		"error":        st.Error,
	}
	if !st.FinishedAt.IsZero() {
		out["finished_at"] = st.FinishedAt.UTC().Format(time.RFC3339)
	}
	if st.Result != nil {
		out["result"] = ToPBBatchResult(*st.Result)
	}
	return out
}
