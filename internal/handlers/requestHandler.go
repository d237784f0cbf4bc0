package handlers

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/DocChat/internal/adapter"
	"github.com/akolanti/DocChat/internal/adapter/utils"
	"github.com/akolanti/DocChat/internal/api"
	"github.com/akolanti/DocChat/internal/config"
	"github.com/akolanti/DocChat/internal/domain/commonModels"
	"github.com/akolanti/DocChat/pkg/logger_i"
)

var logRH *logger_i.Logger

// batch ids double as chat ids, minted from the upload timestamp
const batchIdLayout = "20060102_150405"

type newJobData struct {
	id            string
	chatId        string
	message       string
	chatHistory   []commonModels.ChatTurn
	isNewChat     bool
	traceId       string
	isBatchIngest bool
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	return
}

// ChatHandler godoc
// @Summary      Ask a question against an uploaded batch
// @Description  Accepts a message for an existing chat, initializes a background processing job, and returns a job ID to track status.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest      true  "Chat Message, Chat ID and optional prior turns"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Invalid request data or chat ID"
// @Router       /chat [post]
func ChatHandler(w http.ResponseWriter, request *http.Request) {

	if validateContext(request.Context()) {

		var requestData api.ChatRequest
		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logRH.Error("Couldn't close the Chat handler reader :", err)
			}
		}(request.Body)
		if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || !ValidateChatRequest(requestData) {
			logRH.Warn("Bad Chat Request: ", "error:", err, "request data:", requestData)
			WriteErrorResponse(w, http.StatusBadRequest, requestData.ChatID, "Bad Request")
			return
		}

		newJob := newJobData{
			id:          utils.GetNewUUID(),
			chatId:      requestData.ChatID,
			message:     requestData.Message,
			chatHistory: requestData.ChatHistory,
			traceId:     request.Context().Value(config.TRACE_ID_KEY).(string),
		}
		CreateNewJob(newJob)
		writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
		return
	}
	logRH.Warn("Invalid Context by request ", request.RemoteAddr)
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a specific job using its ID.
// @Tags         Job Status
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Job ID "
// @Success      200  {object}  api.JobResponse   "Successful retrieval of job status"
// @Failure      404  {object}  api.JobResponse   "Job not found (returns Error object within JobResponse)"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		//use chi get the url id
		idString := utils.GetChiURLParam(r, "id")
		result, isFound := validateId(idString, r.Context().Value(config.TRACE_ID_KEY).(string))

		logRH.Debug("Get Status Request:", "URL path", r.URL.Path)
		if !isFound {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
	}
}

// UploadPdfsHandler godoc
// @Summary      Upload a batch of documents
// @Description  Receives one or more PDF files via multipart/form-data, stores them under a fresh batch directory, queues an ingestion job and opens the conversation tied to the batch. Rejected files are listed per name in the errors field.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Param        files  formData  file  true  "PDF files to upload"
// @Success      202  {object}  api.UploadResponse "Accepted - returns chat_id, job_id, saved files and per-file errors"
// @Failure      400  {object}  api.JobResponse "Bad Request - Missing files, file too large, or no file passed validation"
// @Failure      500  {object}  api.JobResponse "Internal Server Error - Storage or Write Error"
// @Router       /upload-pdfs [post]
func UploadPdfsHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {

		const maxUploadSize = 32 << 20 //32mb
		err := r.ParseMultipartForm(maxUploadSize)
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
			return
		}

		files := r.MultipartForm.File["files"]
		if len(files) == 0 {
			WriteErrorResponse(w, http.StatusBadRequest, "", "No files uploaded")
			return
		}

		batchId := time.Now().Format(batchIdLayout)
		targetDir, errString := getBatchDirectory(batchId)
		if errString != "" {
			logRH.Error("Couldn't get batch directory :", "err", errString)
			WriteErrorResponse(w, http.StatusInternalServerError, batchId, errString)
			return
		}

		// one bad file never sinks the batch, it gets reported per file instead
		var uploaded []api.UploadedFile
		var uploadErrors []string
		for _, fileMetadata := range files {
			filename := filepath.Base(fileMetadata.Filename)
			if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
				uploadErrors = append(uploadErrors, filename+": Not a PDF file")
				continue
			}
			if errString := saveUploadedFile(fileMetadata, targetDir); errString != "" {
				logRH.Error("Couldn't save uploaded file :", "file", filename, "err", errString)
				uploadErrors = append(uploadErrors, filename+": "+errString)
				continue
			}
			uploaded = append(uploaded, api.UploadedFile{Filename: filename, Size: fileMetadata.Size})
		}

		if len(uploaded) == 0 {
			WriteErrorResponse(w, http.StatusBadRequest, batchId, "No files uploaded. Errors: "+strings.Join(uploadErrors, ", "))
			return
		}

		newJob := newJobData{
			id:            utils.GetNewUUID(),
			chatId:        batchId,
			isNewChat:     true,
			traceId:       r.Context().Value(config.TRACE_ID_KEY).(string),
			isBatchIngest: true,
		}
		CreateNewJob(newJob)
		writeJsonResponse(w, http.StatusAccepted, adapter.ToUploadResponse(batchId, uploaded, uploadErrors, newJob.id))
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// DeleteChatHandler godoc
// @Summary      Delete a conversation
// @Description  Removes the persisted batch indexes and the message history for a chat id.
// @Tags         Messaging
// @Produce      json
// @Param        id   path      string  true  "Chat ID"
// @Success      200  {object}  api.DeleteChatResponse
// @Failure      404  {object}  api.JobResponse "Chat not found"
// @Failure      500  {object}  api.JobResponse "Eviction failed"
// @Router       /chat/{id} [delete]
func DeleteChatHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		chatId := utils.GetChiURLParam(r, "id")
		if chatId == "" || strings.Contains(chatId, "..") || !ChatExists(chatId) {
			WriteErrorResponse(w, http.StatusNotFound, chatId, "Chat not found")
			return
		}

		if err := DeleteChat(chatId, r.Context().Value(config.TRACE_ID_KEY).(string)); err != nil {
			logRH.Error("Failed to delete chat", "chatId", chatId, "err", err)
			WriteErrorResponse(w, http.StatusInternalServerError, chatId, "Could not delete chat")
			return
		}

		writeJsonResponse(w, http.StatusOK, api.DeleteChatResponse{ChatId: chatId, Deleted: true})
	}
}

func saveUploadedFile(fileMetadata *multipart.FileHeader, targetDir string) string {
	fileReader, err := fileMetadata.Open()
	if err != nil {
		return "Could not retrieve file"
	}
	defer fileReader.Close()

	filename := filepath.Base(fileMetadata.Filename)
	destinationFileWriter, err := os.Create(filepath.Join(targetDir, filename))
	if err != nil {
		return "Storage error"
	}
	defer destinationFileWriter.Close()

	if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
		return "Write error"
	}
	return ""
}
