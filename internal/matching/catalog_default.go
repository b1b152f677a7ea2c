package matching

// DefaultCatalogVersion is the version of the built-in catalog.
const DefaultCatalogVersion = "builtin-2024.1"

func skills(names ...string) []SkillDefinition {
	defs := make([]SkillDefinition, 0, len(names))
	for _, n := range names {
		defs = append(defs, SkillDefinition{Name: n})
	}
	return defs
}

func skill(name string, synonyms ...string) SkillDefinition {
	return SkillDefinition{Name: name, Synonyms: synonyms}
}

// exact is a skill whose words must appear next to each other.
func exact(name string, synonyms ...string) SkillDefinition {
	return SkillDefinition{Name: name, Synonyms: synonyms, Contiguous: true}
}

// DefaultCatalogDefinition returns the built-in skill catalog. Callers get a
// fresh copy they may extend before passing it to NewCatalog.
func DefaultCatalogDefinition() CatalogDefinition {
	return CatalogDefinition{
		Version: DefaultCatalogVersion,
		Categories: map[string][]SkillDefinition{
			"programming_languages": {
				skill("Python", "python3"),
				skill("JavaScript", "ecmascript"),
				skill("TypeScript"),
				skill("Java"),
				skill("Golang", "go lang"),
				skill("C++", "cpp"),
				skill("C#", "csharp"),
				skill("Ruby"),
				skill("Scala"),
				skill("Rust"),
				skill("Kotlin"),
			},
			"web_frameworks": {
				skill("Django"),
				skill("FastAPI", "fast api"),
				skill("Flask"),
				skill("Spring Boot"),
				skill("Node.js", "nodejs"),
			},
			"frontend": {
				skill("React", "reactjs", "react js"),
				skill("Angular", "angularjs"),
				skill("Vue", "vuejs", "vue js"),
			},
			"databases": {
				skill("PostgreSQL", "postgres"),
				skill("MySQL"),
				skill("SQL"),
				skill("MongoDB", "mongo"),
				skill("Elasticsearch"),
				skill("DynamoDB"),
			},
			"aws_services": {
				skill("AWS", "amazon web services"),
				skill("Lambda", "aws lambda"),
				skill("EC2"),
				skill("S3"),
				skill("RDS"),
				skill("CloudWatch", "cloud watch"),
				skill("Glue", "aws glue"),
				skill("Athena"),
				skill("Kinesis"),
				skill("Firehose"),
				skill("IAM"),
				skill("VPC"),
				skill("CloudFormation"),
				exact("API Gateway"),
				skill("CloudFront"),
				skill("Aurora"),
			},
			"devops_tools": {
				skill("Docker"),
				skill("Kubernetes", "k8s"),
				skill("Jenkins"),
				exact("GitHub Actions"),
				skill("Terraform"),
				skill("Ansible"),
				skill("Helm"),
			},
			"data_tools": {
				skill("Pandas"),
				skill("NumPy"),
				skill("Spark", "pyspark", "apache spark"),
				skill("Airflow", "apache airflow"),
				skill("Kafka", "apache kafka"),
			},
			"apis_protocols": {
				exact("REST APIs", "rest api", "restful"),
				skill("GraphQL"),
				skill("JWT"),
				skill("OAuth2", "oauth", "oauth 2"),
				skill("gRPC"),
			},
			"message_queues": skills("Celery", "Redis", "RabbitMQ"),
			"ml_frameworks": {
				skill("Scikit-learn", "sklearn"),
				skill("TensorFlow"),
				skill("PyTorch"),
				exact("Machine Learning", "ml"),
				exact("Deep Learning"),
				skill("NLP", "natural language processing"),
			},
			"other_tools": {
				skill("Linux"),
				skill("Git"),
				skill("CI/CD", "cicd"),
			},
		},
		Specializations: []SpecializationDefinition{
			{Name: "Data Engineering", Keywords: []string{"data engineer", "data pipelines"}},
			{Name: "ETL Pipelines", Keywords: []string{"etl", "elt"}},
			{Name: "Microservices", Keywords: []string{"microservice", "service oriented architecture"}},
			{Name: "API Integrations", Keywords: []string{"api integration", "third party apis"}},
			{Name: "Cloud Infrastructure", Keywords: []string{"infrastructure as code", "cloud infrastructure"}},
		},
	}
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultCatalogDefinition())
	if err != nil {
		panic("matching: invalid built-in catalog: " + err.Error())
	}
	return c
}
