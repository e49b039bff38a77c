package server

import (
	"net/http"

	"github.com/Desarso/companion/models"
	"github.com/Desarso/companion/sessions"
	"github.com/gin-gonic/gin"
)

func toTurnResponse(res sessions.TurnResult) models.Turn_Response {
	out := models.Turn_Response{
		State:        string(res.State),
		UserMessage:  res.UserMessage,
		AgentMessage: res.AgentMessage,
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return out
}

// getConfig godoc
// @Summary Persona configuration
// @Tags config
// @Produce json
// @Success 200 {object} models.AgentConfig
// @Router /config [get]
func (s *Server) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, s.chat.Config())
}

// putConfig godoc
// @Summary Replace the persona configuration
// @Tags config
// @Accept json
// @Produce json
// @Param config body models.AgentConfig true "Persona"
// @Success 200 {object} models.AgentConfig
// @Failure 400 {object} map[string]string
// @Router /config [put]
func (s *Server) putConfig(c *gin.Context) {
	var cfg models.AgentConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saved, err := s.chat.UpdateConfig(cfg)
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// getThread godoc
// @Summary Active path with sibling info and allowed actions
// @Tags thread
// @Produce json
// @Success 200 {object} models.ThreadView
// @Router /thread [get]
func (s *Server) getThread(c *gin.Context) {
	c.JSON(http.StatusOK, s.chat.View())
}

// postTurn godoc
// @Summary Send a prompt and wait for the reply
// @Tags thread
// @Accept json
// @Produce json
// @Param turn body models.Turn_Request true "Prompt and optional image data URI"
// @Success 200 {object} models.Turn_Response
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /turns [post]
func (s *Server) postTurn(c *gin.Context) {
	var req models.Turn_Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := s.chat.SubmitTurn(c.Request.Context(), sessions.TurnRequest{
		Prompt: req.Prompt,
		Image:  req.Image,
	})
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, toTurnResponse(res))
}

// postRegenerate godoc
// @Summary Ask for another reply to the last prompt
// @Tags thread
// @Produce json
// @Success 200 {object} models.Turn_Response
// @Failure 409 {object} map[string]string
// @Router /regenerate [post]
func (s *Server) postRegenerate(c *gin.Context) {
	res, err := s.chat.Regenerate(c.Request.Context())
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, toTurnResponse(res))
}

// editMessage godoc
// @Summary Fork an edited copy of a message
// @Tags messages
// @Accept json
// @Produce json
// @Param id path string true "Message ID"
// @Param edit body models.Edit_Request true "New text"
// @Success 200 {object} models.Turn_Response
// @Failure 404 {object} map[string]string
// @Router /messages/{id}/edit [post]
func (s *Server) editMessage(c *gin.Context) {
	var req models.Edit_Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := s.chat.EditMessage(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, toTurnResponse(res))
}

// switchBranch godoc
// @Summary Activate the latest turn of the branch starting at a message
// @Tags messages
// @Produce json
// @Param id path string true "Message ID"
// @Success 200 {object} models.ThreadView
// @Failure 404 {object} map[string]string
// @Router /messages/{id}/switch [post]
func (s *Server) switchBranch(c *gin.Context) {
	if _, err := s.chat.SwitchBranch(c.Param("id")); err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, s.chat.View())
}

// siblings godoc
// @Summary Alternatives to a message, itself included
// @Tags messages
// @Produce json
// @Param id path string true "Message ID"
// @Success 200 {array} models.Message
// @Failure 404 {object} map[string]string
// @Router /messages/{id}/siblings [get]
func (s *Server) siblings(c *gin.Context) {
	sibs, err := s.chat.Siblings(c.Param("id"))
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, sibs)
}

// messageImage godoc
// @Summary Download the image attached to a message
// @Tags messages
// @Produce image/png
// @Param id path string true "Message ID"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string
// @Router /messages/{id}/image [get]
func (s *Server) messageImage(c *gin.Context) {
	mime, data, err := s.chat.MessageImage(c.Param("id"))
	if err != nil {
		s.abort(c, err)
		return
	}
	c.Data(http.StatusOK, mime, data)
}

// messageAudio godoc
// @Summary Download a message's speech as WAV
// @Tags messages
// @Produce audio/wav
// @Param id path string true "Message ID"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string
// @Router /messages/{id}/audio [get]
func (s *Server) messageAudio(c *gin.Context) {
	wav, err := s.chat.MessageAudioWAV(c.Param("id"))
	if err != nil {
		s.abort(c, err)
		return
	}
	c.Data(http.StatusOK, "audio/wav", wav)
}

// newChat godoc
// @Summary Archive the current thread and start an empty one
// @Tags sessions
// @Produce json
// @Success 200 {object} models.ChatSession
// @Success 204
// @Failure 409 {object} map[string]string
// @Router /chats/new [post]
func (s *Server) newChat(c *gin.Context) {
	session, archived, err := s.chat.NewConversation()
	if err != nil {
		s.abort(c, err)
		return
	}
	if !archived {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, session)
}

// listSessions godoc
// @Summary Archived sessions, most recent first
// @Tags sessions
// @Produce json
// @Success 200 {array} models.SessionSummary
// @Router /sessions [get]
func (s *Server) listSessions(c *gin.Context) {
	c.JSON(http.StatusOK, s.chat.Sessions())
}

// loadSession godoc
// @Summary Restore an archived session, archiving the current thread
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.ThreadView
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /sessions/{id}/load [post]
func (s *Server) loadSession(c *gin.Context) {
	if _, err := s.chat.LoadSession(c.Param("id")); err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, s.chat.View())
}

// deleteSession godoc
// @Summary Delete an archived session
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /sessions/{id} [delete]
func (s *Server) deleteSession(c *gin.Context) {
	if err := s.chat.DeleteSession(c.Param("id")); err != nil {
		s.abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// clearSessions godoc
// @Summary Drop the current thread and every archived session
// @Tags sessions
// @Success 204
// @Failure 409 {object} map[string]string
// @Router /sessions [delete]
func (s *Server) clearSessions(c *gin.Context) {
	if err := s.chat.ClearAll(); err != nil {
		s.abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// startCall godoc
// @Summary Start call mode
// @Tags calls
// @Success 204
// @Failure 409 {object} map[string]string
// @Router /calls/start [post]
func (s *Server) startCall(c *gin.Context) {
	if err := s.chat.StartCall(); err != nil {
		s.abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// endCall godoc
// @Summary End call mode and record the call
// @Tags calls
// @Accept json
// @Produce json
// @Param call body models.Call_End_Request false "Optional client-measured duration"
// @Success 200 {object} models.CallHistory
// @Success 204
// @Failure 409 {object} map[string]string
// @Router /calls/end [post]
func (s *Server) endCall(c *gin.Context) {
	var req models.Call_End_Request
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	call, recorded, err := s.chat.EndCall(req.Duration)
	if err != nil {
		s.abort(c, err)
		return
	}
	if !recorded {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, call)
}

// listCalls godoc
// @Summary Call history, most recent first
// @Tags calls
// @Produce json
// @Success 200 {array} models.CallHistory
// @Router /calls [get]
func (s *Server) listCalls(c *gin.Context) {
	c.JSON(http.StatusOK, s.chat.CallHistory())
}

// deleteCall godoc
// @Summary Delete one call record
// @Tags calls
// @Param id path string true "Call ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /calls/{id} [delete]
func (s *Server) deleteCall(c *gin.Context) {
	if err := s.chat.DeleteCall(c.Param("id")); err != nil {
		s.abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// clearCalls godoc
// @Summary Delete the whole call history
// @Tags calls
// @Success 204
// @Router /calls [delete]
func (s *Server) clearCalls(c *gin.Context) {
	if err := s.chat.ClearCalls(); err != nil {
		s.abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// reset godoc
// @Summary Wipe all stored state and restore the default persona
// @Tags config
// @Success 204
// @Failure 409 {object} map[string]string
// @Router /reset [post]
func (s *Server) reset(c *gin.Context) {
	if err := s.chat.Reset(); err != nil {
		s.abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
