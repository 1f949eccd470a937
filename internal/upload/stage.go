package upload

// Stage is one state of an upload session.
type Stage string

const (
	StageIdle               Stage = "idle"
	StageUploading          Stage = "uploading"
	StageRemovingBackground Stage = "removing-background"
	StageClassifying        Stage = "classifying"
	StageDone               Stage = "done"
	StageFailed             Stage = "failed"
)

// Progress returns the advisory percentage shown for the stage. The remote
// call is a single request; these milestones are estimates, not reports.
func (s Stage) Progress() int {
	switch s {
	case StageUploading:
		return 10
	case StageRemovingBackground:
		return 30
	case StageClassifying:
		return 70
	case StageDone:
		return 100
	default:
		return 0
	}
}

// Status is the user-facing label for the stage.
func (s Stage) Status() string {
	switch s {
	case StageUploading:
		return "正在上传图片..."
	case StageRemovingBackground:
		return "正在移除背景..."
	case StageClassifying:
		return "正在分析衣物语义..."
	case StageDone:
		return "完成!"
	case StageFailed:
		return "上传失败"
	default:
		return ""
	}
}

// Terminal reports whether the session ends in this stage.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}
