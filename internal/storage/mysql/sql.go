package mysql

// local_photos is not part of the Places payload and is never overwritten here.
const upsertCenterSQL = `
INSERT INTO bowling_centers
  (place_id, name, formatted_address, rating, total_reviews, top_reviews, weekday_text,
   open_now, website, phone, google_maps_url, lat, lng)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name              = VALUES(name),
  formatted_address = VALUES(formatted_address),
  rating            = VALUES(rating),
  total_reviews     = VALUES(total_reviews),
  top_reviews       = COALESCE(VALUES(top_reviews), bowling_centers.top_reviews),
  weekday_text      = COALESCE(VALUES(weekday_text), bowling_centers.weekday_text),
  open_now          = VALUES(open_now),
  website           = VALUES(website),
  phone             = VALUES(phone),
  google_maps_url   = VALUES(google_maps_url),
  lat               = VALUES(lat),
  lng               = VALUES(lng),
  updated_at        = CURRENT_TIMESTAMP
`

const insertMissSQL = `
INSERT INTO ingest_misses (place_id, http_status, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE http_status = VALUES(http_status), seen_at = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const centerColumns = `
  place_id,
  name,
  formatted_address,
  rating,
  total_reviews,
  local_photos,
  top_reviews,
  weekday_text,
  open_now,
  website,
  phone,
  google_maps_url,
  lat,
  lng`

const getCenterSQL = `SELECT` + centerColumns + `
FROM bowling_centers
WHERE place_id = ?
`

// NULL ratings sort last on DESC; id follows insertion order and breaks ties.
const listCentersOrder = `
ORDER BY rating DESC, id ASC`

const listAddressesSQL = `
SELECT place_id, formatted_address
FROM bowling_centers
ORDER BY id ASC
`
