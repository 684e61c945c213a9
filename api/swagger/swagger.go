package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Cohort Engine API",
        "description": "Academic calendar, roster and statistics service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "security": [
        {
            "BearerAuth": []
        }
    ],
    "tags": [
        {
            "name": "Periods",
            "description": "Academic calendar resolution"
        },
        {
            "name": "Rosters",
            "description": "Accountable students per offering"
        },
        {
            "name": "Statistics",
            "description": "Grade completion and pass rates"
        },
        {
            "name": "Attendance",
            "description": "Attendance regularity"
        },
        {
            "name": "Dashboard",
            "description": "Teacher workload"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {
                        "description": "Ready"
                    },
                    "503": {
                        "description": "Database unavailable"
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "produces": [
                    "text/plain"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/periods/current": {
            "get": {
                "tags": [
                    "Periods"
                ],
                "summary": "Resolve the grading period of a date",
                "parameters": [
                    {
                        "name": "date",
                        "in": "query",
                        "type": "string",
                        "description": "Date (YYYY-MM-DD). Defaults to today"
                    },
                    {
                        "name": "family",
                        "in": "query",
                        "type": "string",
                        "description": "quarter or bimester"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "412": {
                        "description": "No active cycle",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/periods/calendar": {
            "get": {
                "tags": [
                    "Periods"
                ],
                "summary": "List the calendar windows of the active cycle",
                "parameters": [
                    {
                        "name": "family",
                        "in": "query",
                        "type": "string",
                        "description": "quarter or bimester"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "412": {
                        "description": "No active cycle",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/offerings/{id}/roster": {
            "get": {
                "tags": [
                    "Rosters"
                ],
                "summary": "Resolved roster of an offering",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Offering ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/students/{id}/offerings": {
            "get": {
                "tags": [
                    "Rosters"
                ],
                "summary": "Offerings a student is accountable for",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Student ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/statistics/offerings/{id}": {
            "get": {
                "tags": [
                    "Statistics"
                ],
                "summary": "Statistics of one offering",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Offering ID"
                    },
                    {
                        "name": "date",
                        "in": "query",
                        "type": "string",
                        "description": "Date (YYYY-MM-DD) selecting the period"
                    },
                    {
                        "name": "family",
                        "in": "query",
                        "type": "string",
                        "description": "quarter or bimester"
                    },
                    {
                        "name": "field",
                        "in": "query",
                        "type": "string",
                        "description": "Grade field override"
                    },
                    {
                        "name": "threshold",
                        "in": "query",
                        "type": "number",
                        "description": "Pass threshold (1-10)"
                    },
                    {
                        "name": "attendance",
                        "in": "query",
                        "type": "boolean",
                        "description": "Include attendance rollup"
                    },
                    {
                        "name": "from",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "to",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "412": {
                        "description": "No active cycle",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/statistics/courses": {
            "get": {
                "tags": [
                    "Statistics"
                ],
                "summary": "Statistics of every course of the active cycle",
                "parameters": [
                    {
                        "name": "date",
                        "in": "query",
                        "type": "string",
                        "description": "Date (YYYY-MM-DD) selecting the period"
                    },
                    {
                        "name": "family",
                        "in": "query",
                        "type": "string",
                        "description": "quarter or bimester"
                    },
                    {
                        "name": "field",
                        "in": "query",
                        "type": "string",
                        "description": "Grade field override"
                    },
                    {
                        "name": "threshold",
                        "in": "query",
                        "type": "number",
                        "description": "Pass threshold (1-10)"
                    },
                    {
                        "name": "attendance",
                        "in": "query",
                        "type": "boolean",
                        "description": "Include attendance rollup"
                    },
                    {
                        "name": "from",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "to",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "teacherId",
                        "in": "query",
                        "type": "string",
                        "description": "Restrict to a teacher's offerings"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "412": {
                        "description": "No active cycle",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/statistics/courses/{id}": {
            "get": {
                "tags": [
                    "Statistics"
                ],
                "summary": "Statistics of every offering of a course",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Course ID"
                    },
                    {
                        "name": "date",
                        "in": "query",
                        "type": "string",
                        "description": "Date (YYYY-MM-DD) selecting the period"
                    },
                    {
                        "name": "family",
                        "in": "query",
                        "type": "string",
                        "description": "quarter or bimester"
                    },
                    {
                        "name": "field",
                        "in": "query",
                        "type": "string",
                        "description": "Grade field override"
                    },
                    {
                        "name": "threshold",
                        "in": "query",
                        "type": "number",
                        "description": "Pass threshold (1-10)"
                    },
                    {
                        "name": "attendance",
                        "in": "query",
                        "type": "boolean",
                        "description": "Include attendance rollup"
                    },
                    {
                        "name": "from",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "to",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "412": {
                        "description": "No active cycle",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/statistics/courses/{id}/export": {
            "get": {
                "tags": [
                    "Statistics"
                ],
                "summary": "Export course statistics as CSV or PDF",
                "produces": [
                    "text/csv",
                    "application/pdf"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Course ID"
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "enum": [
                            "csv",
                            "pdf"
                        ],
                        "description": "Export format, csv by default"
                    },
                    {
                        "name": "date",
                        "in": "query",
                        "type": "string",
                        "description": "Date (YYYY-MM-DD) selecting the period"
                    },
                    {
                        "name": "family",
                        "in": "query",
                        "type": "string",
                        "description": "quarter or bimester"
                    },
                    {
                        "name": "field",
                        "in": "query",
                        "type": "string",
                        "description": "Grade field override"
                    },
                    {
                        "name": "threshold",
                        "in": "query",
                        "type": "number",
                        "description": "Pass threshold (1-10)"
                    },
                    {
                        "name": "attendance",
                        "in": "query",
                        "type": "boolean",
                        "description": "Include attendance rollup"
                    },
                    {
                        "name": "from",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "to",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "CSV file"
                    }
                }
            }
        },
        "/attendance/courses/{id}": {
            "get": {
                "tags": [
                    "Attendance"
                ],
                "summary": "Attendance regularity of a course",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Course ID"
                    },
                    {
                        "name": "from",
                        "in": "query",
                        "type": "string",
                        "description": "Range start (YYYY-MM-DD)"
                    },
                    {
                        "name": "to",
                        "in": "query",
                        "type": "string",
                        "description": "Range end (YYYY-MM-DD)"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "412": {
                        "description": "No active cycle",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/dashboard/workload": {
            "get": {
                "tags": [
                    "Dashboard"
                ],
                "summary": "Teacher workload dashboard",
                "parameters": [
                    {
                        "name": "date",
                        "in": "query",
                        "type": "string",
                        "description": "Date (YYYY-MM-DD). Defaults to today"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/dashboard/workload/refresh": {
            "post": {
                "tags": [
                    "Dashboard"
                ],
                "summary": "Recompute the caller's workload in the background",
                "parameters": [
                    {
                        "name": "date",
                        "in": "query",
                        "type": "string",
                        "description": "Date (YYYY-MM-DD). Defaults to today"
                    }
                ],
                "responses": {
                    "202": {
                        "description": "Accepted",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "429": {
                        "description": "Refresh queue full",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "meta": {
                    "type": "object"
                }
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
