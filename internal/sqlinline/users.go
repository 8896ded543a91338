package sqlinline

const QInsertUser = `--sql 8f3c2a1d-5b6e-4c7a-9d20-3e1f4a5b6c7d
insert into users(id, email, name, password_hash, role, properties, created_at, updated_at)
values (
  gen_random_uuid(),
  lower($1::text),
  $2::text,
  $3::text,
  'USER',
  coalesce($4::jsonb, '{}'::jsonb),
  now(),
  now()
)
returning id, created_at;
`

const QSelectUserByEmail = `--sql 2b9d4e6f-1a3c-45d8-8e72-6f0a1b2c3d4e
select id, email, name, password_hash, role, created_at
from users
where email = lower($1::text)
limit 1;
`

const QSelectUserByID = `--sql 7a1e9c3b-8d2f-4b5a-a634-0c9e8d7f6a5b
select id, email, name, first_name, last_name, phone, role, created_at, updated_at, last_login_at
from users
where id = $1::uuid
limit 1;
`

const QUpdateUserProfile = `--sql 4c8b2d7e-6f1a-49c3-b5d8-2a7e6f5c4d3b
update users
set name       = coalesce(nullif($2::text, ''), name),
    first_name = coalesce(nullif($3::text, ''), first_name),
    last_name  = coalesce(nullif($4::text, ''), last_name),
    phone      = coalesce(nullif($5::text, ''), phone),
    updated_at = now()
where id = $1::uuid
returning id;
`

const QTouchLastLogin = `--sql 9e5a7c1f-3b8d-42e6-a790-5d4c3b2a1f0e
update users
set last_login_at = now(), updated_at = now()
where id = $1::uuid;
`
