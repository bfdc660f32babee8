package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.ExtractDocumentActivity)
	w.RegisterActivity(a.ClassifyDocumentActivity)
	w.RegisterActivity(a.ChunkStatuteActivity)
	w.RegisterActivity(a.ExtractGlobalMetadataActivity)
	w.RegisterActivity(a.AtomizeDocumentActivity)
	w.RegisterActivity(a.PersistChunksActivity)
	w.RegisterActivity(a.WritePreviewActivity)
	w.RegisterActivity(a.IndexChunksActivity)
	w.RegisterActivity(a.UpdateJobStateActivity)
	w.RegisterActivity(a.UpdateJobDocumentTypeActivity)
	w.RegisterActivity(a.CheckJobDeletedActivity)
	w.RegisterActivity(a.DeleteJobDataActivity)
}
