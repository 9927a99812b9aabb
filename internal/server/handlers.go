package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/gorilla/mux"
	"github.com/wailsapp/mimetype"

	"github.com/Ning0612/nasbrowser/internal/domain"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/browse/", http.StatusFound)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	subpath := mux.Vars(r)["subpath"]

	listing, err := s.browser.Browse(r.Context(), subpath)
	if errors.Is(err, domain.ErrNotDirectory) {
		http.Redirect(w, r, "/download/"+escapePath(strings.Trim(subpath, "/")), http.StatusFound)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	dl, err := s.browser.Download(r.Context(), mux.Vars(r)["path"])
	if err != nil {
		writeError(w, err)
		return
	}
	defer dl.Content.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(dl.Name)))
	if ctype := contentType(dl.Name, dl.Content); ctype != "" {
		w.Header().Set("Content-Type", ctype)
	}
	http.ServeContent(w, r, dl.Name, dl.ModTime, dl.Content)
}

// contentType picks a type from the extension, or sniffs the content when
// the extension is unknown. content is rewound afterwards.
func contentType(name string, content io.ReadSeeker) string {
	if ctype := mime.TypeByExtension(path.Ext(name)); ctype != "" {
		return ctype
	}

	detected, err := mimetype.DetectReader(content)
	if _, serr := content.Seek(0, io.SeekStart); serr != nil || err != nil {
		return ""
	}
	return detected.String()
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed upload: " + err.Error()})
		return
	}
	defer r.MultipartForm.RemoveAll()

	files, closeAll, err := incomingFiles(r.MultipartForm)
	defer closeAll()
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.browser.Upload(r.Context(), mux.Vars(r)["subpath"], files)
	if err != nil {
		resp := errorResponse{Error: err.Error(), RequestID: w.Header().Get(headerRequestID)}
		if result != nil {
			resp.Files = result.Names
		}
		writeJSON(w, statusFor(err), resp)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Uploaded: result.Count(),
		Files:    result.Names,
		Skipped:  result.Skipped,
	})
}

// incomingFiles opens every part of the "files" field.
// A file input left empty arrives as a plain value with no file name;
// those are passed on nameless so they count as skipped.
func incomingFiles(form *multipart.Form) ([]domain.IncomingFile, func(), error) {
	var opened []io.Closer
	closeAll := func() {
		for _, c := range opened {
			c.Close()
		}
	}

	var files []domain.IncomingFile
	for _, fh := range form.File["files"] {
		f, err := fh.Open()
		if err != nil {
			return nil, closeAll, fmt.Errorf("open upload part %q: %w", fh.Filename, err)
		}
		opened = append(opened, f)
		files = append(files, domain.IncomingFile{Name: fh.Filename, Content: f})
	}
	for _, v := range form.Value["files"] {
		files = append(files, domain.IncomingFile{Content: strings.NewReader(v)})
	}

	return files, closeAll, nil
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	name, err := folderName(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	created, err := s.browser.CreateFolder(r.Context(), mux.Vars(r)["subpath"], name)
	if err != nil {
		writeError(w, err)
		return
	}

	parent := strings.Trim(mux.Vars(r)["subpath"], "/")
	p := created
	if parent != "" {
		p = parent + "/" + created
	}
	writeJSON(w, http.StatusCreated, createFolderResponse{Name: created, Path: p})
}

// folderName reads folder_name from a JSON body or a form
func folderName(r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/json" {
		var body struct {
			FolderName string `json:"folder_name"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&body); err != nil {
			return "", fmt.Errorf("malformed request body: %w", err)
		}
		return body.FolderName, nil
	}

	if err := r.ParseForm(); err != nil {
		return "", fmt.Errorf("malformed form: %w", err)
	}
	return r.PostFormValue("folder_name"), nil
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	target := mux.Vars(r)["path"]

	kind, err := s.browser.Delete(r.Context(), target)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{
		Deleted: kind.String(),
		Parent:  parentOf(target),
	})
}
