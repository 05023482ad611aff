package drawio

import (
	"strings"

	"github.com/harishkotra/SketchStack/pkg/plan"
)

var awsStyles = map[plan.ComponentType]string{
	plan.ComponentServerlessFunction: "shape=mxgraph.aws4.lambda_function;",
	plan.ComponentStorage:            "shape=mxgraph.aws4.s3;",
	plan.ComponentDatabase:           "shape=mxgraph.aws4.dynamodb;",
	plan.ComponentAPIGateway:         "shape=mxgraph.aws4.api_gateway;",
	plan.ComponentQueue:              "shape=mxgraph.aws4.sqs;",
	plan.ComponentMonitoring:         "shape=mxgraph.aws4.cloudwatch;",
	plan.ComponentCache:              "shape=mxgraph.aws4.elasticache;",
	plan.ComponentCDN:                "shape=mxgraph.aws4.cloudfront;",
	plan.ComponentLoadBalancer:       "shape=mxgraph.aws4.elastic_load_balancing;",
	plan.ComponentContainer:          "shape=mxgraph.aws4.ecs;",
	plan.ComponentAuth:               "shape=mxgraph.aws4.cognito;",
	plan.ComponentSearch:             "shape=mxgraph.aws4.opensearch;",
	plan.ComponentNotification:       "shape=mxgraph.aws4.sns;",
	plan.ComponentStreamProcessor:    "shape=mxgraph.aws4.kinesis;",
	plan.ComponentSecretManager:      "shape=mxgraph.aws4.secrets_manager;",
	plan.ComponentDNS:                "shape=mxgraph.aws4.route_53;",
	plan.ComponentWAF:                "shape=mxgraph.aws4.waf;",
	plan.ComponentLogging:            "shape=mxgraph.aws4.cloudwatch;",
}

var gcpStyles = map[plan.ComponentType]string{
	plan.ComponentServerlessFunction: "shape=mxgraph.gcp2.cloud_functions;",
	plan.ComponentContainer:          "shape=mxgraph.gcp2.cloud_run;",
	plan.ComponentQueue:              "shape=mxgraph.gcp2.cloud_pubsub;",
	plan.ComponentDatabase:           "shape=mxgraph.gcp2.cloud_sql;",
	plan.ComponentStorage:            "shape=mxgraph.gcp2.cloud_storage;",
	plan.ComponentAPIGateway:         "shape=mxgraph.gcp2.cloud_endpoints;",
	plan.ComponentMonitoring:         "shape=mxgraph.gcp2.cloud_monitoring;",
	plan.ComponentLogging:            "shape=mxgraph.gcp2.cloud_logging;",
	plan.ComponentCache:              "shape=mxgraph.gcp2.memorystore;",
	plan.ComponentLoadBalancer:       "shape=mxgraph.gcp2.cloud_load_balancing;",
	plan.ComponentCDN:                "shape=mxgraph.gcp2.cloud_cdn;",
	plan.ComponentSearch:             "shape=mxgraph.gcp2.cloud_search;",
	plan.ComponentStreamProcessor:    "shape=mxgraph.gcp2.cloud_dataflow;",
	plan.ComponentAuth:               "shape=mxgraph.gcp2.cloud_iam;",
}

var azureStyles = map[plan.ComponentType]string{
	plan.ComponentServerlessFunction: "shape=mxgraph.azure.azure_function;",
	plan.ComponentQueue:              "shape=mxgraph.azure.service_bus;",
	plan.ComponentDatabase:           "shape=mxgraph.azure.cosmos_db;",
	plan.ComponentStorage:            "shape=mxgraph.azure.blob_storage;",
	plan.ComponentAPIGateway:         "shape=mxgraph.azure.api_management;",
	plan.ComponentMonitoring:         "shape=mxgraph.azure.monitor;",
	plan.ComponentCache:              "shape=mxgraph.azure.redis_cache;",
	plan.ComponentContainer:          "shape=mxgraph.azure.container_instances;",
	plan.ComponentLoadBalancer:       "shape=mxgraph.azure.load_balancer;",
	plan.ComponentCDN:                "shape=mxgraph.azure.cdn;",
	plan.ComponentAuth:               "shape=mxgraph.azure.active_directory;",
	plan.ComponentLogging:            "shape=mxgraph.azure.log_analytics;",
	plan.ComponentNotification:       "shape=mxgraph.azure.notification_hubs;",
}

const (
	rectGreen  = "shape=mxgraph.basic.rect;rounded=1;fillColor=#D5E8D4;strokeColor=#82B366;fontStyle=1;"
	rectBlue   = "shape=mxgraph.basic.rect;rounded=1;fillColor=#DAE8FC;strokeColor=#6C8EBF;fontStyle=1;"
	rectPurple = "shape=mxgraph.basic.rect;rounded=1;fillColor=#E1D5E7;strokeColor=#9673A6;fontStyle=1;"
	rectYellow = "shape=mxgraph.basic.rect;rounded=1;fillColor=#FFF2CC;strokeColor=#D6B656;fontStyle=1;"
	rectRed    = "shape=mxgraph.basic.rect;rounded=1;fillColor=#F8CECC;strokeColor=#B85450;fontStyle=1;"
	rectGrey   = "shape=mxgraph.basic.rect;rounded=1;fillColor=#F5F5F5;strokeColor=#666666;fontStyle=1;"

	cylinderRed    = "shape=cylinder3;fillColor=#F8CECC;strokeColor=#B85450;whiteSpace=wrap;fontStyle=1;size=15;"
	cylinderOrange = "shape=cylinder3;fillColor=#FFE6CC;strokeColor=#D79B00;whiteSpace=wrap;fontStyle=1;size=15;"
	cylinderPurple = "shape=cylinder3;fillColor=#E1D5E7;strokeColor=#9673A6;whiteSpace=wrap;fontStyle=1;size=15;"

	hexagonPurple = "shape=hexagon;perimeter=hexagonPerimeter2;fillColor=#E1D5E7;strokeColor=#9673A6;fontStyle=1;size=0.25;"
)

var neutralStyles = map[plan.ComponentType]string{
	plan.ComponentFrontend:           rectGreen,
	plan.ComponentBackend:            rectBlue,
	plan.ComponentAPIGateway:         rectPurple,
	plan.ComponentLoadBalancer:       rectYellow,
	plan.ComponentDatabase:           cylinderRed,
	plan.ComponentCache:              cylinderOrange,
	plan.ComponentQueue:              rectYellow,
	plan.ComponentStorage:            cylinderPurple,
	plan.ComponentCDN:                rectGreen,
	plan.ComponentAuth:               rectRed,
	plan.ComponentServerlessFunction: rectBlue,
	plan.ComponentContainer:          rectBlue,
	plan.ComponentSearch:             rectBlue,
	plan.ComponentMLModel:            hexagonPurple,
	plan.ComponentVectorDB:           cylinderPurple,
	plan.ComponentStreamProcessor:    rectYellow,
	plan.ComponentMonitoring:         rectGreen,
	plan.ComponentLogging:            rectGreen,
	plan.ComponentNotification:       rectYellow,
	plan.ComponentScheduler:          rectYellow,
	plan.ComponentProxy:              rectBlue,
	plan.ComponentServiceMesh:        rectBlue,
	plan.ComponentSecretManager:      rectRed,
	plan.ComponentDNS:                rectGreen,
	plan.ComponentWAF:                rectRed,
	plan.ComponentOther:              rectGrey,
}

var providerStyles = map[plan.Provider]map[plan.ComponentType]string{
	plan.ProviderAWS:   awsStyles,
	plan.ProviderGCP:   gcpStyles,
	plan.ProviderAzure: azureStyles,
}

// IconStyle returns the base mxGraph style for a component type. The
// provider table is consulted only for non-neutral providers; when it has
// an entry, cloud is true and the node is drawn as a fixed-aspect icon with
// a caption underneath. Every other case, including unknown types, falls
// back to the neutral table.
func IconStyle(t plan.ComponentType, p plan.Provider) (style string, cloud bool) {
	t = t.Kind()
	if p != plan.ProviderNeutral {
		if s, ok := providerStyles[p][t]; ok {
			return s + "aspect=fixed;resizable=0;fontStyle=1;", true
		}
	}
	if s, ok := neutralStyles[t]; ok {
		return s, false
	}
	return neutralStyles[plan.ComponentOther], false
}

// nodeStyle completes an icon style with the text and outline settings
// shared by every node cell.
func nodeStyle(icon string) string {
	if strings.Contains(icon, "shape=mxgraph.") {
		icon += "fontColor=#0f172a;"
	} else {
		icon += "fillColor=#ffffff;strokeColor=#94a3b8;strokeWidth=1.5;fontColor=#0f172a;shadow=1;"
	}
	return icon + "whiteSpace=wrap;html=1;fontSize=11;fontFamily=Helvetica;"
}
