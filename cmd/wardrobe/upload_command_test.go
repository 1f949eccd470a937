package main

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wardrobe/internal/testsupport"
)

func TestUploadListDeleteHistory(t *testing.T) {
	env := setupCLITestEnv(t, nil)
	photo := testsupport.WriteJPEG(t, filepath.Join(env.baseDir, "shirt.jpg"), 12, 12)

	out, _, err := env.run(t, "upload", photo)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	requireContains(t, out, "Uploading shirt.jpg (image/jpeg")
	requireContains(t, out, "#1 衬衫 (上装)")
	requireContains(t, out, "上传成功 (item 1)")
	requireContains(t, out, env.backend.URL+"/uploads/1.png")

	out, _, err = env.run(t, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "衬衫")
	requireContains(t, out, "春, 夏")

	out, _, err = env.run(t, "list", "--season", "冬")
	if err != nil {
		t.Fatalf("list --season: %v", err)
	}
	requireContains(t, out, "No items match the filters")

	out, _, err = env.run(t, "list", "--json", "--search", "纯棉")
	if err != nil {
		t.Fatalf("list --json: %v", err)
	}
	requireContains(t, out, `"item": "衬衫"`)

	out, _, err = env.run(t, "delete", "1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	requireContains(t, out, "删除成功 (item 1)")
	requireContains(t, out, "Wardrobe: 0 tops, 0 bottoms, 0 shoes")

	out, _, err = env.run(t, "list")
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	requireContains(t, out, "Wardrobe is empty")

	out, _, err = env.run(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "shirt.jpg")
	requireContains(t, out, "done")

	out, _, err = env.run(t, "history", "--clear")
	if err != nil {
		t.Fatalf("history --clear: %v", err)
	}
	requireContains(t, out, "Removed 1 journal entry")
}

func TestUploadFailureReportsServerDetail(t *testing.T) {
	env := setupCLITestEnv(t, nil)
	env.backend.FailUploads(http.StatusInternalServerError, "图片分析失败")
	photo := testsupport.WriteJPEG(t, filepath.Join(env.baseDir, "shirt.jpg"), 8, 8)

	_, _, err := env.run(t, "upload", photo)
	if err == nil {
		t.Fatal("expected upload failure")
	}
	requireContains(t, err.Error(), "上传失败 (classifying): 图片分析失败")

	out, _, err := env.run(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "failed at classifying")
}

func TestUploadRejectsNonImageWithoutRequest(t *testing.T) {
	env := setupCLITestEnv(t, nil)
	notes := filepath.Join(env.baseDir, "notes.txt")
	if err := os.WriteFile(notes, []byte("not a photo"), 0o644); err != nil {
		t.Fatal(err)
	}
	photo := testsupport.WriteJPEG(t, filepath.Join(env.baseDir, "shirt.jpg"), 8, 8)

	if _, _, err := env.run(t, "upload", "--drop", notes, photo); err == nil {
		t.Fatal("expected dropped text file to be rejected")
	}
	if hits := env.backend.Hits("POST /api/upload"); hits != 0 {
		t.Fatalf("expected no upload request, got %d", hits)
	}

	// Without --drop only the first argument is considered.
	out, _, err := env.run(t, "upload", photo, notes)
	if err != nil {
		t.Fatalf("upload first file: %v", err)
	}
	requireContains(t, out, "上传成功")
}

func TestUploadSaveAppliesEdits(t *testing.T) {
	env := setupCLITestEnv(t, nil)
	photo := testsupport.WriteJPEG(t, filepath.Join(env.baseDir, "shirt.jpg"), 8, 8)

	out, _, err := env.run(t, "upload", photo, "--name", "白衬衫", "--seasons", "夏，秋")
	if err != nil {
		t.Fatalf("upload with edits: %v", err)
	}
	requireContains(t, out, "保存成功 (item 1)")
	requireContains(t, out, "#1 白衬衫")

	items := env.backend.Items()
	if len(items) != 1 || items[0].Name != "白衬衫" || strings.Join(items[0].Seasons, "|") != "夏|秋" {
		t.Fatalf("unexpected stored items %+v", items)
	}
	if items[0].ImageURL != "/uploads/1.png" {
		t.Fatalf("image reference should survive the edit, got %q", items[0].ImageURL)
	}
}

func TestCaptureWithNativeCommand(t *testing.T) {
	env := setupCLITestEnv(t, nil, testsupport.WithNativeCamera())

	out, _, err := env.run(t, "capture")
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	requireContains(t, out, "Uploading camera-photo.jpg (image/jpeg")
	requireContains(t, out, "上传成功 (item 1)")

	out, _, err = env.run(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "camera-photo.jpg")
}

func TestCaptureFailsWhenNativeCommandProducesNoPhoto(t *testing.T) {
	env := setupCLITestEnv(t, nil)
	env.cfg.Camera.NativeCommand = "true {out}"
	writeTestConfig(t, env.configPath, env.cfg)

	if _, _, err := env.run(t, "capture"); err == nil {
		t.Fatal("expected capture without a produced photo to fail")
	}
	if hits := env.backend.Hits("POST /api/upload"); hits != 0 {
		t.Fatalf("expected no upload request, got %d", hits)
	}
}
