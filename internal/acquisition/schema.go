package acquisition

import "google.golang.org/genai"

func str(enum ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Enum: enum}
}

func num() *genai.Schema { return &genai.Schema{Type: genai.TypeNumber} }

func obj(props map[string]*genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props}
}

func arr(items *genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: items}
}

func nullable(s *genai.Schema) *genai.Schema {
	s.Nullable = genai.Ptr(true)
	return s
}

// ResponseSchema constrains the model output to the ScanResult shape.
func ResponseSchema() *genai.Schema {
	root := obj(map[string]*genai.Schema{
		"targetIp":     str(),
		"overallScore": num(),
		"aiAnalysis":   str(),
		"openPorts": arr(obj(map[string]*genai.Schema{
			"port":    num(),
			"service": str(),
			"version": str(),
			"state":   str("open", "filtered", "closed"),
		})),
		"vulnerabilities": arr(obj(map[string]*genai.Schema{
			"name":         str(),
			"severity":     str("CRITICAL", "HIGH", "MEDIUM", "LOW", "INFO"),
			"description":  str(),
			"remediation":  str(),
			"toolDetected": str(),
		})),
		"connectedAssets": arr(obj(map[string]*genai.Schema{
			"ip":       str(),
			"hostname": str(),
			"type":     str("Primary", "Subdomain", "Mail Server", "Load Balancer", "CDN", "Database"),
			"location": str(),
		})),
		"performanceReport": nullable(obj(map[string]*genai.Schema{
			"overallScore": num(),
			"metrics": arr(obj(map[string]*genai.Schema{
				"name":        str(),
				"value":       str(),
				"score":       str("good", "needs-improvement", "poor"),
				"description": str(),
			})),
			"opportunities": arr(obj(map[string]*genai.Schema{
				"title":       str(),
				"savings":     str(),
				"description": str(),
			})),
		})),
		"serverHealth": nullable(obj(map[string]*genai.Schema{
			"cpuUsage": num(),
			"ramUsage": num(),
			"uptime":   str(),
			"os":       str(),
		})),
		"networkStats": nullable(obj(map[string]*genai.Schema{
			"ping":           num(),
			"packetLoss":     num(),
			"dnsProvider":    str(),
			"traceroute":     arr(str()),
			"whoisRegistrar": str(),
			"whoisDate":      str(),
		})),
		"securityHeaders": nullable(arr(obj(map[string]*genai.Schema{
			"name":           str(),
			"value":          str(),
			"status":         str("secure", "insecure", "missing"),
			"recommendation": str(),
		}))),
		"loadTestResults": nullable(arr(obj(map[string]*genai.Schema{
			"time":              str(),
			"requestsPerSecond": num(),
			"latency":           num(),
			"errors":            num(),
		}))),
		"topology": nullable(obj(map[string]*genai.Schema{
			"nodes": arr(obj(map[string]*genai.Schema{
				"id":     str(),
				"label":  str(),
				"type":   str("internet", "firewall", "load_balancer", "server", "database"),
				"status": str("active", "inactive"),
			})),
			"links": arr(obj(map[string]*genai.Schema{
				"source": str(),
				"target": str(),
			})),
		})),
		"globalPing": nullable(arr(obj(map[string]*genai.Schema{
			"region":   str(),
			"location": str(),
			"latency":  num(),
			"status":   str("online", "degraded", "offline"),
		}))),
		"deviceFingerprint": nullable(obj(map[string]*genai.Schema{
			"os":         str(),
			"osFamily":   str("linux", "windows", "ios", "android", "other"),
			"deviceType": str("server", "firewall", "router", "iot"),
			"confidence": num(),
			"details":    str(),
		})),
		"seleniumReport": nullable(arr(obj(map[string]*genai.Schema{
			"name":        str(),
			"description": str(),
			"duration":    str(),
			"status":      str("pass", "fail"),
			"steps": arr(obj(map[string]*genai.Schema{
				"stepNumber":     num(),
				"action":         str(),
				"expectedResult": str(),
				"actualResult":   str(),
				"status":         str("pass", "fail", "warning"),
			})),
		}))),
		"jmeterReport": nullable(obj(map[string]*genai.Schema{
			"testPlanName": str(),
			"duration":     str(),
			"summary": obj(map[string]*genai.Schema{
				"totalSamples":   num(),
				"averageLatency": num(),
				"minLatency":     num(),
				"maxLatency":     num(),
				"stdDev":         num(),
				"errorPct":       num(),
				"throughput":     num(),
				"p90":            num(),
				"p95":            num(),
				"p99":            num(),
			}),
			"samples": arr(obj(map[string]*genai.Schema{
				"timestamp":     str(),
				"activeThreads": num(),
				"latency":       num(),
				"throughput":    num(),
				"errorRate":     num(),
			})),
		})),
		"packetCapture": nullable(arr(obj(map[string]*genai.Schema{
			"no":          num(),
			"time":        str(),
			"source":      str(),
			"destination": str(),
			"protocol":    str(),
			"length":      num(),
			"info":        str(),
		}))),
		"forensicsReport": nullable(obj(map[string]*genai.Schema{
			"protocolStats": arr(obj(map[string]*genai.Schema{
				"protocol": str(),
				"percent":  num(),
				"packets":  num(),
				"bytes":    num(),
			})),
			"expertIssues": arr(obj(map[string]*genai.Schema{
				"severity": str("Chat", "Note", "Warning", "Error"),
				"group":    str(),
				"protocol": str(),
				"summary":  str(),
			})),
			"reconstructedStreams": arr(obj(map[string]*genai.Schema{
				"id":      str(),
				"title":   str(),
				"content": str(),
				"tags":    arr(str()),
			})),
		})),
		"idsReport": nullable(obj(map[string]*genai.Schema{
			"totalAlerts":  num(),
			"blockedCount": num(),
			"alertsByPriority": obj(map[string]*genai.Schema{
				"high":   num(),
				"medium": num(),
				"low":    num(),
			}),
			"alerts": arr(obj(map[string]*genai.Schema{
				"timestamp":      str(),
				"sid":            str(),
				"signature":      str(),
				"classification": str(),
				"priority":       num(),
				"protocol":       str(),
				"sourceIp":       str(),
				"sourcePort":     num(),
				"destIp":         str(),
				"destPort":       num(),
				"action":         str("allowed", "blocked", "logged"),
			})),
		})),
	})
	root.Required = []string{"targetIp", "overallScore", "aiAnalysis", "openPorts", "vulnerabilities"}
	return root
}
