package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cardio-risk-server/internal/domain"
	"github.com/cardio-risk-server/internal/repository"
)

// decodeBody decodes a JSON object body preserving the int/float distinction.
// encoding/json normally turns every number into float64, which would break
// the validators' integer contracts (flags and rate reject floats); UseNumber
// plus per-value conversion keeps "75" an int and "75.0" a float.
func decodeBody(c *gin.Context) (map[string]interface{}, error) {
	decoder := json.NewDecoder(c.Request.Body)
	decoder.UseNumber()

	var data map[string]interface{}
	if err := decoder.Decode(&data); err != nil {
		return nil, err
	}

	for key, value := range data {
		if num, ok := value.(json.Number); ok {
			if i, err := num.Int64(); err == nil {
				data[key] = int(i)
				continue
			}
			if f, err := num.Float64(); err == nil {
				data[key] = f
			}
		}
	}
	return data, nil
}

// respondError maps domain errors onto HTTP status codes. Validation
// failures carry the offending field and value; inconsistencies are internal
// server faults.
func (s *Server) respondError(c *gin.Context, err error) {
	requestID := c.GetString("correlation_id")

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": verr.Message,
			"field": verr.Field,
			"value": verr.Value,
		})
		return
	}

	var ierr *domain.InconsistencyError
	if errors.As(err, &ierr) {
		s.logger.WithError(err).Error("Coefficient table inconsistency")
		c.JSON(http.StatusInternalServerError, domain.NewAPIError(
			domain.ErrInconsistency,
			"Internal calculation inconsistency",
			ierr.Error(),
			requestID,
		))
		return
	}

	s.logger.WithError(err).Error("Unhandled assessment error")
	c.JSON(http.StatusInternalServerError, domain.NewAPIError(
		domain.ErrInternalServer,
		"Internal server error",
		"",
		requestID,
	))
}

// respondBadJSON reports an unparseable request body.
func (s *Server) respondBadJSON(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, domain.NewAPIError(
		domain.ErrInvalidInput,
		"Request body must be a JSON object",
		err.Error(),
		c.GetString("correlation_id"),
	))
}

// handleASCVD computes a 10-year ASCVD risk estimate
func (s *Server) handleASCVD(c *gin.Context) {
	data, err := decodeBody(c)
	if err != nil {
		s.respondBadJSON(c, err)
		return
	}

	result, record, err := s.assessor.AssessASCVD(c.Request.Context(), c.GetString("correlation_id"), data)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.recent.Add(record)

	c.JSON(http.StatusOK, gin.H{
		"risk":          result.Risk,
		"risk_percent":  result.RiskPercent,
		"group":         result.Group,
		"assessment_id": record.ID,
	})
}

// handleBloodPressure classifies a blood pressure reading
func (s *Server) handleBloodPressure(c *gin.Context) {
	data, err := decodeBody(c)
	if err != nil {
		s.respondBadJSON(c, err)
		return
	}

	category, record, err := s.assessor.AssessBloodPressure(c.Request.Context(), c.GetString("correlation_id"), data["sbp"], data["dbp"])
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.recent.Add(record)

	c.JSON(http.StatusOK, gin.H{
		"category":      category,
		"assessment_id": record.ID,
	})
}

// handleStrokeRisk computes a CHA2DS2-VASc score
func (s *Server) handleStrokeRisk(c *gin.Context) {
	data, err := decodeBody(c)
	if err != nil {
		s.respondBadJSON(c, err)
		return
	}

	result, record, err := s.assessor.AssessStrokeRisk(c.Request.Context(), c.GetString("correlation_id"), data)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.recent.Add(record)

	c.JSON(http.StatusOK, gin.H{
		"score":         result.Score,
		"risk_level":    result.RiskLevel,
		"assessment_id": record.ID,
	})
}

// handleECGRhythm interprets a rhythm strip. Validation failures surface in
// the interpretation itself, so the endpoint always returns 200 for valid
// JSON.
func (s *Server) handleECGRhythm(c *gin.Context) {
	data, err := decodeBody(c)
	if err != nil {
		s.respondBadJSON(c, err)
		return
	}

	result, record := s.assessor.AssessRhythm(c.Request.Context(), c.GetString("correlation_id"), data)
	s.recent.Add(record)

	c.JSON(http.StatusOK, result)
}

// handleECGTwelveLead interprets 12-lead findings
func (s *Server) handleECGTwelveLead(c *gin.Context) {
	data, err := decodeBody(c)
	if err != nil {
		s.respondBadJSON(c, err)
		return
	}

	result, record := s.assessor.AssessTwelveLead(c.Request.Context(), c.GetString("correlation_id"), data)
	s.recent.Add(record)

	c.JSON(http.StatusOK, result)
}

// handleECGComprehensive produces the merged rhythm and 12-lead report
func (s *Server) handleECGComprehensive(c *gin.Context) {
	data, err := decodeBody(c)
	if err != nil {
		s.respondBadJSON(c, err)
		return
	}

	result, record := s.assessor.AssessECG(c.Request.Context(), c.GetString("correlation_id"), data)
	s.recent.Add(record)

	c.JSON(http.StatusOK, result)
}

// handleRecentAssessments lists recent assessment summaries. With a
// repository configured the durable store is authoritative; otherwise the
// in-memory cache serves the window since startup.
func (s *Server) handleRecentAssessments(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	if s.repo != nil {
		records, err := s.repo.ListRecent(c.Request.Context(), limit, 0)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"assessments": records, "count": len(records)})
		return
	}

	records := s.recent.List()
	if len(records) > limit {
		records = records[:limit]
	}
	c.JSON(http.StatusOK, gin.H{"assessments": records, "count": len(records)})
}

// handleGetAssessment retrieves a stored assessment record by UUID
func (s *Server) handleGetAssessment(c *gin.Context) {
	id := c.Param("id")

	if record, ok := s.recent.Get(id); ok {
		c.JSON(http.StatusOK, record)
		return
	}

	if s.repo != nil {
		record, err := s.repo.GetByID(c.Request.Context(), id)
		if err == nil {
			c.JSON(http.StatusOK, record)
			return
		}
		if !errors.Is(err, repository.ErrNotFound) {
			s.respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusNotFound, domain.NewAPIError(
		domain.ErrNotFound,
		"Assessment not found",
		id,
		c.GetString("correlation_id"),
	))
}
