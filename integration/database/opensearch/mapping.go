package opensearch

func textKeyword() map[string]any {
	return map[string]any{
		"type":  "text",
		"index": true,
		"fields": map[string]any{
			"keyword": map[string]any{"type": "keyword"},
		},
	}
}

func dynamicTemplate(name string, match map[string]any, mapping map[string]any) map[string]any {
	body := map[string]any{"mapping": mapping}
	for k, v := range match {
		body[k] = v
	}
	return map[string]any{name: body}
}

// indexBody is the create-index request for event documents.
func indexBody(shards int) map[string]any {
	metaProps := map[string]any{
		"content_length": map[string]any{"type": "long", "index": false},
		"last_modified":  map[string]any{"type": "date", "format": "strict_date_optional_time"},
		"expires":        map[string]any{"type": "date", "format": "strict_date_optional_time", "ignore_malformed": true},
	}
	for _, f := range []string{
		"cache_control", "content_disposition", "content_encoding", "content_language",
		"content_type", "etag", "md5", "version_id", "storage_class",
	} {
		metaProps[f] = textKeyword()
	}

	body := map[string]any{
		"mappings": map[string]any{
			"dynamic_templates": []any{
				dynamicTemplate("bucket", map[string]any{"match": "bucket"}, textKeyword()),
				dynamicTemplate("name", map[string]any{"match": "name"}, textKeyword()),
				dynamicTemplate("instance", map[string]any{"match": "instance"}, textKeyword()),
				dynamicTemplate("create_time", map[string]any{"match": "create_time"}, map[string]any{
					"type":   "date",
					"index":  true,
					"format": "yyyy-MM-dd HH:mm:ss.SSS",
				}),
				dynamicTemplate("user_meta", map[string]any{"path_match": "meta.meta_*"}, textKeyword()),
			},
			"properties": map[string]any{
				"meta": map[string]any{
					"type":       "object",
					"properties": metaProps,
				},
			},
		},
	}
	if shards > 0 {
		body["settings"] = map[string]any{"index": map[string]any{"number_of_shards": shards}}
	}
	return body
}
