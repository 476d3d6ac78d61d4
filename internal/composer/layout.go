package composer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Layout is where a request's persisted files live:
//
//	{root}/{id}/video/{id}.mp4
//	{root}/{id}/video/{id}_thumbnail.jpg
//	{root}/{id}/script/{id}.txt
type Layout struct {
	VideoPath     string
	ThumbnailPath string
	ScriptPath    string
}

func newLayout(root, requestID string) Layout {
	base := filepath.Join(root, requestID)
	return Layout{
		VideoPath:     filepath.Join(base, "video", requestID+".mp4"),
		ThumbnailPath: filepath.Join(base, "video", requestID+"_thumbnail.jpg"),
		ScriptPath:    filepath.Join(base, "script", requestID+".txt"),
	}
}

// persist copies the finished video and thumbnail into place and writes the
// script file.
func (l Layout) persist(video, thumb string, req Request) error {
	if err := copyFile(video, l.VideoPath); err != nil {
		return err
	}
	if err := copyFile(thumb, l.ThumbnailPath); err != nil {
		return err
	}
	return writeScriptFile(l.ScriptPath, req, l)
}

// remove deletes whatever persist managed to write.
func (l Layout) remove() {
	for _, p := range []string{l.VideoPath, l.ThumbnailPath, l.ScriptPath} {
		os.Remove(p)
	}
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.WithStack(err)
	}

	in, err := os.Open(src)
	if err != nil {
		return errors.WithStack(err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.WithStack(err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrap(err, "failed to copy video")
	}
	return errors.WithStack(out.Close())
}

func writeScriptFile(path string, req Request, layout Layout) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WithStack(err)
	}

	hashtags := make([]string, 0, len(req.Hashtags))
	for _, tag := range req.Hashtags {
		hashtags = append(hashtags, "#"+strings.TrimPrefix(tag, "#"))
	}
	voice := req.Voice
	if voice == "" {
		voice = "default"
	}

	var sb strings.Builder
	sb.WriteString("=== Video Content ===\n\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n\n", req.Title))
	sb.WriteString(fmt.Sprintf("Script:\n%s\n\n", req.Script))
	sb.WriteString(fmt.Sprintf("Hashtags:\n%s\n\n", strings.Join(hashtags, " ")))
	sb.WriteString(fmt.Sprintf("Format: %s\n", req.Format.Name()))
	sb.WriteString(fmt.Sprintf("TTS Model: %s\n", req.TTSModel))
	sb.WriteString(fmt.Sprintf("Voice: %s\n\n", voice))
	sb.WriteString("Generated Files:\n")
	sb.WriteString(fmt.Sprintf("Audio: %s\n", req.AudioPath))
	sb.WriteString(fmt.Sprintf("Video: %s\n", layout.VideoPath))
	sb.WriteString(fmt.Sprintf("Thumbnail: %s\n", layout.ThumbnailPath))

	return errors.Wrap(os.WriteFile(path, []byte(sb.String()), 0644), "failed to write script file")
}
